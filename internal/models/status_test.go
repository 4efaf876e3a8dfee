package models

import "testing"

func TestContractTransitions(t *testing.T) {
	all := []ContractStatus{ContractStatusActive, ContractStatusCompleted, ContractStatusTerminated}
	for _, from := range all {
		for _, to := range all {
			want := from == ContractStatusActive && (to == ContractStatusCompleted || to == ContractStatusTerminated)
			if got := from.CanTransitionTo(to); got != want {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
}

func TestProposalTransitions(t *testing.T) {
	if !ProposalStatusPending.CanTransitionTo(ProposalStatusAccepted) {
		t.Fatal("pending -> accepted must be allowed")
	}
	if ProposalStatusAccepted.CanTransitionTo(ProposalStatusRejected) {
		t.Fatal("accepted is not a source state")
	}
	if ProposalStatusWithdrawn.CanTransitionTo(ProposalStatusPending) {
		t.Fatal("withdrawn is terminal")
	}
}

func TestProjectTransitions(t *testing.T) {
	cases := []struct {
		from, to ProjectStatus
		want     bool
	}{
		{ProjectStatusDraft, ProjectStatusOpen, true},
		{ProjectStatusOpen, ProjectStatusInProgress, true},
		{ProjectStatusOpen, ProjectStatusCancelled, true},
		{ProjectStatusInProgress, ProjectStatusCompleted, true},
		{ProjectStatusInProgress, ProjectStatusCancelled, false},
		{ProjectStatusCompleted, ProjectStatusOpen, false},
		{ProjectStatusCancelled, ProjectStatusOpen, false},
		{ProjectStatusDraft, ProjectStatusInProgress, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Partner "); !ok || r != RolePartner {
		t.Fatalf("expected partner, got %q %v", r, ok)
	}
	if _, ok := ParseRole("freelancer"); ok {
		t.Fatal("unknown role must be rejected")
	}
}
