package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeConn feeds ping frames to the reader and flags overlapping writes.
type fakeConn struct {
	pings   chan struct{}
	writing int32
	overlap int32
	closed  chan struct{}
	once    sync.Once

	mu     sync.Mutex
	frames []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{pings: make(chan struct{}), closed: make(chan struct{})}
}

func (f *fakeConn) ReadJSON(v interface{}) error {
	select {
	case _, ok := <-f.pings:
		if !ok {
			return errors.New("eof")
		}
		*(v.(*map[string]interface{})) = map[string]interface{}{"type": "ping"}
		return nil
	case <-f.closed:
		return errors.New("closed")
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	if !atomic.CompareAndSwapInt32(&f.writing, 0, 1) {
		atomic.StoreInt32(&f.overlap, 1)
	}
	time.Sleep(50 * time.Microsecond)
	f.mu.Lock()
	f.frames = append(f.frames, string(data))
	f.mu.Unlock()
	atomic.StoreInt32(&f.writing, 0)
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) count(frame string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, fr := range f.frames {
		if fr == frame {
			n++
		}
	}
	return n
}

func TestServeSingleWriterUnderPingsAndPushes(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	userID := uuid.New()
	conn := newFakeConn()
	served := make(chan struct{})
	go func() {
		Serve(h, conn, userID)
		close(served)
	}()
	waitConnected(t, h, userID, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.SendToUser(userID, map[string]string{"type": "notification"})
		}
	}()
	for i := 0; i < 200; i++ {
		conn.pings <- struct{}{}
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for conn.count(string(pongFrame)) == 0 || conn.count(`{"type":"notification"}`) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("pongs=%d notifications=%d", conn.count(string(pongFrame)), conn.count(`{"type":"notification"}`))
		}
		time.Sleep(time.Millisecond)
	}

	close(conn.pings)
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after the reader failed")
	}
	if atomic.LoadInt32(&conn.overlap) != 0 {
		t.Fatal("two writers touched the connection at once")
	}
	waitConnected(t, h, userID, 0)
}

func TestServeClosesOnHubStop(t *testing.T) {
	h := NewHub()
	go h.Run()

	userID := uuid.New()
	conn := newFakeConn()
	served := make(chan struct{})
	go func() {
		Serve(h, conn, userID)
		close(served)
	}()
	waitConnected(t, h, userID, 1)

	h.Stop()
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Stop")
	}
	select {
	case <-conn.closed:
	default:
		t.Fatal("connection left open")
	}
}
