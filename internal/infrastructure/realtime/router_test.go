package realtime

import (
	"fmt"
	"sync"
	"testing"
)

// fakeSession records deliveries and terminations in place of a websocket.
type fakeSession struct {
	id   string
	user string

	mu         sync.Mutex
	delivered  [][]byte
	terminated bool
	reason     string
}

func newFakeSession(id, user string) *fakeSession {
	return &fakeSession{id: id, user: user}
}

func (f *fakeSession) ID() string     { return f.id }
func (f *fakeSession) UserID() string { return f.user }

func (f *fakeSession) Deliver(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, payload)
	return nil
}

func (f *fakeSession) Terminate(code int, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = true
	f.reason = reason
}

func (f *fakeSession) deliveredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

func (f *fakeSession) wasTerminated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminated
}

func TestAttachLastRegisteredWins(t *testing.T) {
	r := NewRouter()
	first := newFakeSession("s1", "alice")
	second := newFakeSession("s2", "alice")

	r.Attach(first)
	r.Attach(second)

	if !first.wasTerminated() {
		t.Fatal("previous session was not terminated after replacement")
	}
	if !r.NotifyUser("alice", []byte("hi")) {
		t.Fatal("NotifyUser failed for replaced user")
	}
	if second.deliveredCount() != 1 {
		t.Fatalf("expected delivery to the new session, got %d", second.deliveredCount())
	}
	if first.deliveredCount() != 0 {
		t.Fatal("replaced session still receives deliveries")
	}

	// The replaced session's own detach must now be a not-found no-op.
	if _, ok := r.Detach(first); ok {
		t.Fatal("detaching an already-replaced session reported ok")
	}
}

func TestDetachReportsOwningUser(t *testing.T) {
	r := NewRouter()
	s := newFakeSession("s1", "bob")
	r.Attach(s)

	userID, ok := r.Detach(s)
	if !ok || userID != "bob" {
		t.Fatalf("Detach = (%q, %v), want (bob, true)", userID, ok)
	}

	// Unknown session: recoverable no-op.
	stranger := newFakeSession("s2", "mallory")
	if userID, ok := r.Detach(stranger); ok || userID != "" {
		t.Fatalf("Detach of unknown session = (%q, %v), want not found", userID, ok)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRouter()
	s := newFakeSession("s1", "alice")
	r.Attach(s)

	r.Join("c1", s)
	r.Join("c1", s)
	if got := r.RoomSize("c1"); got != 1 {
		t.Fatalf("RoomSize after double join = %d, want 1", got)
	}

	if got := r.Broadcast("c1", []byte("msg")); got != 1 {
		t.Fatalf("Broadcast delivered %d, want 1", got)
	}
	if s.deliveredCount() != 1 {
		t.Fatalf("session received %d payloads, want 1", s.deliveredCount())
	}
}

func TestJoinRequiresAttachment(t *testing.T) {
	r := NewRouter()
	s := newFakeSession("s1", "alice")

	r.Join("c1", s)
	if got := r.RoomSize("c1"); got != 0 {
		t.Fatalf("unattached session joined a room, RoomSize = %d", got)
	}
}

func TestBroadcastReachesWholeRoomOnly(t *testing.T) {
	r := NewRouter()
	alice := newFakeSession("s1", "alice")
	bob := newFakeSession("s2", "bob")
	carol := newFakeSession("s3", "carol")
	for _, s := range []*fakeSession{alice, bob, carol} {
		r.Attach(s)
	}
	r.Join("c1", alice)
	r.Join("c1", bob)

	if got := r.Broadcast("c1", []byte("hello")); got != 2 {
		t.Fatalf("Broadcast delivered %d, want 2", got)
	}
	if alice.deliveredCount() != 1 || bob.deliveredCount() != 1 {
		t.Fatal("room members missed the broadcast")
	}
	if carol.deliveredCount() != 0 {
		t.Fatal("non-member received a room broadcast")
	}
}

func TestBroadcastAllExcludesSubject(t *testing.T) {
	r := NewRouter()
	alice := newFakeSession("s1", "alice")
	bob := newFakeSession("s2", "bob")
	r.Attach(alice)
	r.Attach(bob)

	if got := r.BroadcastAll([]byte("presence"), "alice"); got != 1 {
		t.Fatalf("BroadcastAll delivered %d, want 1", got)
	}
	if alice.deliveredCount() != 0 {
		t.Fatal("excluded user received their own presence event")
	}
	if bob.deliveredCount() != 1 {
		t.Fatal("other user missed the presence event")
	}
}

func TestDetachRemovesRoomMemberships(t *testing.T) {
	r := NewRouter()
	s := newFakeSession("s1", "alice")
	r.Attach(s)
	r.Join("c1", s)
	r.Join("c2", s)

	if _, ok := r.Detach(s); !ok {
		t.Fatal("Detach failed")
	}
	if r.RoomSize("c1") != 0 || r.RoomSize("c2") != 0 {
		t.Fatal("detached session still counted in rooms")
	}
	if r.Broadcast("c1", []byte("msg")) != 0 {
		t.Fatal("broadcast reached a detached session")
	}
}

func TestRouterConcurrentChurn(t *testing.T) {
	r := NewRouter()
	const workers = 32
	const iterations = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", w%8)
			for i := 0; i < iterations; i++ {
				s := newFakeSession(fmt.Sprintf("s-%d-%d", w, i), user)
				r.Attach(s)
				r.Join("c1", s)
				r.Broadcast("c1", []byte("x"))
				r.BroadcastAll([]byte("p"), user)
				r.Detach(s)
			}
		}(w)
	}
	wg.Wait()

	if got := r.RoomSize("c1"); got != 0 {
		t.Fatalf("RoomSize after churn = %d, want 0", got)
	}
}
