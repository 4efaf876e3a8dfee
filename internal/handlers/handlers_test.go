package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/config"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/messaging"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type apiResp struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Code       string              `json:"code"`
	Data       json.RawMessage     `json:"data"`
	Errors     map[string][]string `json:"errors"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
	UnreadCount   int     `json:"unread_count"`
	AverageRating float64 `json:"average_rating"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppOn(t, store.NewMemoryStore())
}

func newTestAppOn(t *testing.T, st *store.MemoryStore) *fiber.App {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := notify.New(st, nil, nil, quiet)
	cfg := config.Config{
		StoreDriver:   config.StoreMemory,
		JWTSecret:     "test-secret",
		JWTExpiresMin: 60,
		CORSOrigins:   "http://localhost:3000",
	}
	return NewApp(Deps{
		Config:   cfg,
		Store:    st,
		Guard:    auth.NewGuard(auth.JWTVerifier{Secret: cfg.JWTSecret}, st),
		Engine:   workflow.New(st, notifier, quiet),
		Notify:   notifier,
		Messages: messaging.New(st, nil, nil, quiet),
		Hub:      realtime.NewHub(),
	})
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, apiResp) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	var out apiResp
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return res.StatusCode, out
}

func must(t *testing.T, status, want int, resp apiResp) {
	t.Helper()
	if status != want {
		t.Fatalf("status = %d, want %d (message %q, errors %v)", status, want, resp.Message, resp.Errors)
	}
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

type session struct {
	Token string
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
}

func register(t *testing.T, app *fiber.App, name, email, role string) session {
	t.Helper()
	status, resp := call(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"full_name": name,
		"email":     email,
		"password":  "secret123",
		"role":      role,
	})
	must(t, status, fiber.StatusCreated, resp)
	var s session
	decode(t, resp.Data, &s)
	if s.Token == "" {
		t.Fatal("register returned no token")
	}
	return s
}

func TestRegisterLoginMe(t *testing.T) {
	app := newTestApp(t)
	reg := register(t, app, "Ann Client", "Ann@Example.com", "client")
	if reg.User.Role != "client" {
		t.Fatalf("role = %q", reg.User.Role)
	}

	status, resp := call(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"full_name": "Other", "email": "ann@example.com", "password": "secret123",
	})
	must(t, status, fiber.StatusUnprocessableEntity, resp)
	if len(resp.Errors["email"]) == 0 {
		t.Fatalf("want an email error, got %v", resp.Errors)
	}

	status, resp = call(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"full_name": "Root", "email": "root@example.com", "password": "secret123", "role": "admin",
	})
	must(t, status, fiber.StatusUnprocessableEntity, resp)

	status, resp = call(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ann@example.com", "password": "nope"})
	must(t, status, fiber.StatusUnauthorized, resp)

	status, resp = call(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ann@example.com", "password": "secret123"})
	must(t, status, fiber.StatusOK, resp)
	var login session
	decode(t, resp.Data, &login)

	status, resp = call(t, app, "GET", "/api/auth/me", login.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var me struct {
		Email string `json:"email"`
	}
	decode(t, resp.Data, &me)
	if me.Email != "ann@example.com" {
		t.Fatalf("me = %q", me.Email)
	}
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	s := register(t, app, "Ann", "ann@example.com", "client")

	status, resp := call(t, app, "PUT", "/api/auth/change-password", s.Token, fiber.Map{
		"current_password": "wrong", "new_password": "another1",
	})
	must(t, status, fiber.StatusUnprocessableEntity, resp)

	status, resp = call(t, app, "PUT", "/api/auth/change-password", s.Token, fiber.Map{
		"current_password": "secret123", "new_password": "another1",
	})
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ann@example.com", "password": "another1"})
	must(t, status, fiber.StatusOK, resp)

	// padded input is accepted by login, so it must be accepted here too
	status, resp = call(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ann@example.com", "password": " another1 "})
	must(t, status, fiber.StatusOK, resp)
	status, resp = call(t, app, "PUT", "/api/auth/change-password", s.Token, fiber.Map{
		"current_password": " another1 ", "new_password": "third123",
	})
	must(t, status, fiber.StatusOK, resp)
}

func TestAuthFailuresMapToStatus(t *testing.T) {
	app := newTestApp(t)

	status, resp := call(t, app, "GET", "/api/auth/me", "", nil)
	must(t, status, fiber.StatusUnauthorized, resp)
	if resp.Code != "MissingToken" {
		t.Fatalf("code = %q", resp.Code)
	}

	status, resp = call(t, app, "GET", "/api/auth/me", "not-a-jwt", nil)
	must(t, status, fiber.StatusUnauthorized, resp)
	if resp.Code != "InvalidToken" {
		t.Fatalf("code = %q", resp.Code)
	}

	partner := register(t, app, "Pat", "pat@example.com", "partner")
	status, resp = call(t, app, "POST", "/api/projects", partner.Token, fiber.Map{
		"title": "x", "description": "y", "project_type": "fixed",
	})
	must(t, status, fiber.StatusForbidden, resp)

	status, resp = call(t, app, "GET", "/api/projects/not-a-uuid", "", nil)
	must(t, status, fiber.StatusBadRequest, resp)

	status, resp = call(t, app, "GET", "/ws/notifications?token="+partner.Token, "", nil)
	must(t, status, fiber.StatusUpgradeRequired, resp)
}

func TestProjectValidationAndVisibility(t *testing.T) {
	app := newTestApp(t)
	client := register(t, app, "Ann", "ann@example.com", "client")

	status, resp := call(t, app, "POST", "/api/projects", client.Token, fiber.Map{
		"title": "", "project_type": "weekly", "budget_min": 500, "budget_max": 100,
	})
	must(t, status, fiber.StatusUnprocessableEntity, resp)
	for _, f := range []string{"title", "description", "project_type", "budget_max"} {
		if len(resp.Errors[f]) == 0 {
			t.Errorf("missing error for %s: %v", f, resp.Errors)
		}
	}

	status, resp = call(t, app, "POST", "/api/projects", client.Token, fiber.Map{
		"title": "Draft", "description": "later", "project_type": "hourly", "draft": true,
	})
	must(t, status, fiber.StatusCreated, resp)
	var draft struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp.Data, &draft)
	if draft.Status != "draft" {
		t.Fatalf("status = %q", draft.Status)
	}

	status, resp = call(t, app, "GET", "/api/projects/"+draft.ID, "", nil)
	must(t, status, fiber.StatusNotFound, resp)
	status, resp = call(t, app, "GET", "/api/projects/"+draft.ID, client.Token, nil)
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "GET", "/api/projects", "", nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 0 {
		t.Fatalf("public listing shows %d projects", resp.Pagination.Total)
	}

	status, resp = call(t, app, "POST", "/api/projects/"+draft.ID+"/publish", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	status, resp = call(t, app, "GET", "/api/projects?search=draft", "", nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 1 {
		t.Fatalf("public listing shows %d projects, want 1", resp.Pagination.Total)
	}

	status, resp = call(t, app, "GET", "/api/projects/my", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 1 {
		t.Fatalf("my projects = %d", resp.Pagination.Total)
	}
}

func TestHireAndReviewOverHTTP(t *testing.T) {
	app := newTestApp(t)
	client := register(t, app, "Ann", "ann@example.com", "client")
	partner := register(t, app, "Pat", "pat@example.com", "partner")
	rival := register(t, app, "Rob", "rob@example.com", "partner")

	profileID := map[string]string{}
	for _, p := range []session{partner, rival} {
		status, resp := call(t, app, "POST", "/api/partners/profile", p.Token, fiber.Map{"bio": "Go dev", "hourly_rate": 40})
		must(t, status, fiber.StatusOK, resp)
		var prof struct {
			ID string `json:"id"`
		}
		decode(t, resp.Data, &prof)
		profileID[p.User.ID] = prof.ID
	}

	status, resp := call(t, app, "POST", "/api/projects", client.Token, fiber.Map{
		"title": "API", "description": "build it", "project_type": "fixed", "budget_max": 1000, "skills": []string{"go"},
	})
	must(t, status, fiber.StatusCreated, resp)
	var project struct {
		ID string `json:"id"`
	}
	decode(t, resp.Data, &project)

	proposalOf := map[string]string{}
	for _, p := range []session{partner, rival} {
		status, resp = call(t, app, "POST", "/api/proposals", p.Token, fiber.Map{
			"project_id": project.ID, "cover_letter": "hire me", "proposed_rate": 900,
		})
		must(t, status, fiber.StatusCreated, resp)
		var prop struct {
			ID string `json:"id"`
		}
		decode(t, resp.Data, &prop)
		proposalOf[p.User.ID] = prop.ID
	}

	status, resp = call(t, app, "POST", "/api/proposals", partner.Token, fiber.Map{
		"project_id": project.ID, "cover_letter": "again", "proposed_rate": 800,
	})
	must(t, status, fiber.StatusBadRequest, resp)

	status, resp = call(t, app, "GET", "/api/notifications", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.UnreadCount != 2 {
		t.Fatalf("client unread = %d, want 2", resp.UnreadCount)
	}

	status, resp = call(t, app, "GET", "/api/proposals/project/"+project.ID, client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 2 {
		t.Fatalf("proposals = %d", resp.Pagination.Total)
	}

	status, resp = call(t, app, "PUT", "/api/proposals/"+proposalOf[partner.User.ID]+"/status", client.Token, fiber.Map{"status": "accepted"})
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "POST", "/api/contracts", client.Token, fiber.Map{
		"project_id":  project.ID,
		"partner_id":  profileID[partner.User.ID],
		"proposal_id": proposalOf[partner.User.ID],
		"agreed_rate": 900,
		"terms":       "two milestones",
		"start_date":  "2026-01-05",
	})
	must(t, status, fiber.StatusCreated, resp)
	var contract struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp.Data, &contract)

	status, resp = call(t, app, "GET", "/api/proposals/"+proposalOf[rival.User.ID], rival.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var lost struct {
		Status string `json:"status"`
	}
	decode(t, resp.Data, &lost)
	if lost.Status != "rejected" {
		t.Fatalf("rival proposal = %q, want rejected", lost.Status)
	}

	status, resp = call(t, app, "GET", "/api/contracts/"+contract.ID, rival.Token, nil)
	must(t, status, fiber.StatusForbidden, resp)

	status, resp = call(t, app, "POST", "/api/reviews", client.Token, fiber.Map{
		"contract_id": contract.ID, "reviewee_id": partner.User.ID, "rating": 5,
	})
	must(t, status, fiber.StatusBadRequest, resp)

	status, resp = call(t, app, "PUT", "/api/contracts/"+contract.ID+"/status", partner.Token, fiber.Map{"status": "completed"})
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "GET", "/api/projects/"+project.ID, "", nil)
	must(t, status, fiber.StatusOK, resp)
	var done struct {
		Status string `json:"status"`
	}
	decode(t, resp.Data, &done)
	if done.Status != "completed" {
		t.Fatalf("project = %q, want completed", done.Status)
	}

	status, resp = call(t, app, "POST", "/api/reviews", client.Token, fiber.Map{
		"contract_id": contract.ID, "reviewee_id": partner.User.ID, "rating": 6,
	})
	must(t, status, fiber.StatusUnprocessableEntity, resp)

	status, resp = call(t, app, "POST", "/api/reviews", client.Token, fiber.Map{
		"contract_id": contract.ID, "reviewee_id": client.User.ID, "rating": 4,
	})
	must(t, status, fiber.StatusBadRequest, resp)
	if resp.Code != "WrongReviewee" {
		t.Fatalf("code = %q", resp.Code)
	}

	status, resp = call(t, app, "POST", "/api/reviews", client.Token, fiber.Map{
		"contract_id": contract.ID, "reviewee_id": partner.User.ID, "rating": 4, "comment": "solid",
	})
	must(t, status, fiber.StatusCreated, resp)
	status, resp = call(t, app, "POST", "/api/reviews", partner.Token, fiber.Map{
		"contract_id": contract.ID, "reviewee_id": client.User.ID, "rating": 5,
	})
	must(t, status, fiber.StatusCreated, resp)

	status, resp = call(t, app, "GET", "/api/reviews/user/"+partner.User.ID, "", nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 1 || resp.AverageRating != 4 {
		t.Fatalf("reviews = %d avg %v", resp.Pagination.Total, resp.AverageRating)
	}

	status, resp = call(t, app, "GET", "/api/partners/"+profileID[partner.User.ID], "", nil)
	must(t, status, fiber.StatusOK, resp)
	var detail struct {
		AverageRating float64 `json:"average_rating"`
		ReviewCount   int     `json:"review_count"`
	}
	decode(t, resp.Data, &detail)
	if detail.ReviewCount != 1 || detail.AverageRating != 4 {
		t.Fatalf("partner detail = %+v", detail)
	}

	status, resp = call(t, app, "GET", "/api/dashboard/stats", partner.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var dash workflow.PartnerDashboard
	decode(t, resp.Data, &dash)
	if dash.CompletedContracts != 1 || dash.TotalEarnings != 900 || dash.AcceptedProposals != 1 {
		t.Fatalf("dashboard = %+v", dash)
	}
}

func TestNotificationInbox(t *testing.T) {
	app := newTestApp(t)
	client := register(t, app, "Ann", "ann@example.com", "client")
	partner := register(t, app, "Pat", "pat@example.com", "partner")

	status, resp := call(t, app, "POST", "/api/partners/profile", partner.Token, fiber.Map{"bio": "hi"})
	must(t, status, fiber.StatusOK, resp)
	status, resp = call(t, app, "POST", "/api/projects", client.Token, fiber.Map{
		"title": "Site", "description": "landing page", "project_type": "fixed",
	})
	must(t, status, fiber.StatusCreated, resp)
	var project struct {
		ID string `json:"id"`
	}
	decode(t, resp.Data, &project)
	status, resp = call(t, app, "POST", "/api/proposals", partner.Token, fiber.Map{
		"project_id": project.ID, "cover_letter": "me", "proposed_rate": 300,
	})
	must(t, status, fiber.StatusCreated, resp)

	status, resp = call(t, app, "GET", "/api/notifications?unread=true", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var items []struct {
		ID string `json:"id"`
	}
	decode(t, resp.Data, &items)
	if len(items) != 1 {
		t.Fatalf("unread = %d, want 1", len(items))
	}

	status, resp = call(t, app, "PUT", "/api/notifications/"+items[0].ID+"/read", partner.Token, nil)
	must(t, status, fiber.StatusNotFound, resp)
	status, resp = call(t, app, "PUT", "/api/notifications/"+items[0].ID+"/read", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "GET", "/api/notifications/unread-count", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var count struct {
		Count int `json:"count"`
	}
	decode(t, resp.Data, &count)
	if count.Count != 0 {
		t.Fatalf("unread count = %d", count.Count)
	}

	status, resp = call(t, app, "DELETE", "/api/notifications", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	status, resp = call(t, app, "GET", "/api/notifications", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 0 {
		t.Fatalf("inbox not empty: %d", resp.Pagination.Total)
	}
}

func TestUpdateMe(t *testing.T) {
	app := newTestApp(t)
	s := register(t, app, "Ann", "ann@example.com", "client")

	status, resp := call(t, app, "PUT", "/api/auth/me", s.Token, fiber.Map{"full_name": "   "})
	must(t, status, fiber.StatusUnprocessableEntity, resp)

	status, resp = call(t, app, "PUT", "/api/auth/me", s.Token, fiber.Map{"full_name": " Ann Smith "})
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "GET", "/api/auth/me", s.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var me struct {
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	decode(t, resp.Data, &me)
	if me.FullName != "Ann Smith" || me.Role != "client" {
		t.Fatalf("me = %+v", me)
	}
}

func TestInactiveUserLosesAccess(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestAppOn(t, st)
	s := register(t, app, "Ann", "ann@example.com", "client")

	u, err := st.GetUser(context.Background(), uuid.MustParse(s.User.ID))
	if err != nil {
		t.Fatal(err)
	}
	u.IsActive = false
	if err := st.UpdateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	status, resp := call(t, app, "GET", "/api/auth/me", s.Token, nil)
	must(t, status, fiber.StatusUnauthorized, resp)
	if resp.Code != "UserInactive" {
		t.Fatalf("code = %q", resp.Code)
	}
	status, resp = call(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ann@example.com", "password": "secret123"})
	must(t, status, fiber.StatusForbidden, resp)
}

func TestMessagesOverHTTP(t *testing.T) {
	app := newTestApp(t)
	client := register(t, app, "Ann", "ann@example.com", "client")
	partner := register(t, app, "Pat", "pat@example.com", "partner")

	status, resp := call(t, app, "POST", "/api/messages", client.Token, fiber.Map{
		"receiver_id": "nope", "content": " ",
	})
	must(t, status, fiber.StatusUnprocessableEntity, resp)
	if len(resp.Errors["receiver_id"]) == 0 || len(resp.Errors["content"]) == 0 {
		t.Fatalf("errors = %v", resp.Errors)
	}

	status, resp = call(t, app, "POST", "/api/messages", client.Token, fiber.Map{
		"receiver_id": uuid.NewString(), "content": "hello",
	})
	must(t, status, fiber.StatusNotFound, resp)

	status, resp = call(t, app, "POST", "/api/projects", client.Token, fiber.Map{
		"title": "Site", "description": "landing page", "project_type": "fixed",
	})
	must(t, status, fiber.StatusCreated, resp)
	var project struct {
		ID string `json:"id"`
	}
	decode(t, resp.Data, &project)

	status, resp = call(t, app, "POST", "/api/messages", client.Token, fiber.Map{
		"receiver_id": partner.User.ID, "project_id": project.ID, "content": "can you start Monday?",
	})
	must(t, status, fiber.StatusCreated, resp)
	var sent struct {
		ID       string `json:"id"`
		SenderID string `json:"sender_id"`
	}
	decode(t, resp.Data, &sent)
	if sent.SenderID != client.User.ID {
		t.Fatalf("sender = %q", sent.SenderID)
	}

	status, resp = call(t, app, "POST", "/api/messages", partner.Token, fiber.Map{
		"receiver_id": client.User.ID, "content": "yes",
	})
	must(t, status, fiber.StatusCreated, resp)

	status, resp = call(t, app, "GET", "/api/messages?user_id="+partner.User.ID, client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 2 {
		t.Fatalf("thread = %d", resp.Pagination.Total)
	}
	status, resp = call(t, app, "GET", "/api/messages?project_id="+project.ID, partner.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	if resp.Pagination.Total != 1 {
		t.Fatalf("project thread = %d", resp.Pagination.Total)
	}
	status, resp = call(t, app, "GET", "/api/messages?user_id=bad", client.Token, nil)
	must(t, status, fiber.StatusUnprocessableEntity, resp)

	status, resp = call(t, app, "GET", "/api/messages/unread-count", partner.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var count struct {
		Count int `json:"count"`
	}
	decode(t, resp.Data, &count)
	if count.Count != 1 {
		t.Fatalf("partner unread = %d", count.Count)
	}

	status, resp = call(t, app, "GET", "/api/messages/conversations", partner.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	var convs []struct {
		UserID      string `json:"user_id"`
		UnreadCount int    `json:"unread_count"`
		LastMessage struct {
			Content string `json:"content"`
		} `json:"last_message"`
	}
	decode(t, resp.Data, &convs)
	if len(convs) != 1 || convs[0].UserID != client.User.ID || convs[0].LastMessage.Content != "yes" || convs[0].UnreadCount != 1 {
		t.Fatalf("conversations = %+v", convs)
	}

	status, resp = call(t, app, "PUT", "/api/messages/"+sent.ID+"/read", client.Token, nil)
	must(t, status, fiber.StatusNotFound, resp)
	status, resp = call(t, app, "PUT", "/api/messages/"+sent.ID+"/read", partner.Token, nil)
	must(t, status, fiber.StatusOK, resp)

	status, resp = call(t, app, "PUT", "/api/messages/conversations/"+partner.User.ID+"/read", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	status, resp = call(t, app, "GET", "/api/messages/unread-count", client.Token, nil)
	must(t, status, fiber.StatusOK, resp)
	decode(t, resp.Data, &count)
	if count.Count != 0 {
		t.Fatalf("client unread = %d", count.Count)
	}
}
