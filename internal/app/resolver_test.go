package app

import (
	"errors"
	"testing"

	"github.com/dkeye/Presence/internal/core"
	"github.com/dkeye/Presence/internal/domain"
	"github.com/dkeye/Presence/internal/store"
)

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(store.New(), core.NewHub())
}

func TestResolve(t *testing.T) {
	t.Run("Fresh", func(t *testing.T) {
		o := newTestOrchestrator()
		adm, err := o.Resolve(Credentials{Username: "ann", PeerID: "p1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adm.SessionID == "" || adm.UserID == "" {
			t.Error("fresh admission must carry generated tokens")
		}
		if adm.Username != "ann" || adm.PeerID != "p1" {
			t.Errorf("asserted fields lost: %+v", adm)
		}
		if adm.Resumed {
			t.Error("fresh admission marked as resumed")
		}
		if o.Store.Len() != 0 {
			t.Error("resolve must not create a session record")
		}
	})

	t.Run("RejectMissingUsername", func(t *testing.T) {
		o := newTestOrchestrator()
		_, err := o.Resolve(Credentials{PeerID: "p1"})
		if !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("err = %v, want ErrInvalidUsername", err)
		}
		if o.Store.Len() != 0 {
			t.Error("rejected attempt left a session record behind")
		}
	})

	t.Run("RejectOverlongUsername", func(t *testing.T) {
		o := newTestOrchestrator()
		long := make([]byte, domain.MaxUsernameLen+1)
		for i := range long {
			long[i] = 'x'
		}
		if _, err := o.Resolve(Credentials{Username: string(long)}); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("err = %v, want ErrInvalidUsername", err)
		}
	})

	t.Run("Resume", func(t *testing.T) {
		o := newTestOrchestrator()
		first, err := o.Resolve(Credentials{Username: "ann", PeerID: "p1"})
		if err != nil {
			t.Fatal(err)
		}
		o.Connect(first, "c1", &fakeConn{})

		// Different username and peer on the resume attempt.
		again, err := o.Resolve(Credentials{SessionID: string(first.SessionID), Username: "other", PeerID: "p2"})
		if err != nil {
			t.Fatalf("resume failed: %v", err)
		}
		if !again.Resumed {
			t.Error("resume not marked as resumed")
		}
		if again.UserID != first.UserID {
			t.Error("resume produced a new identity")
		}
		if again.Username != "ann" {
			t.Errorf("resume username = %q, want stored %q", again.Username, "ann")
		}
		if again.PeerID != "p2" {
			t.Errorf("resume must carry the freshly asserted peer id, got %q", again.PeerID)
		}

		// Absent username on resume is fine too.
		noName, err := o.Resolve(Credentials{SessionID: string(first.SessionID)})
		if err != nil {
			t.Fatalf("resume without username failed: %v", err)
		}
		if noName.UserID != first.UserID || noName.Username != "ann" {
			t.Errorf("resume without username lost identity: %+v", noName)
		}
	})

	t.Run("UnknownSessionFallsThrough", func(t *testing.T) {
		o := newTestOrchestrator()
		adm, err := o.Resolve(Credentials{SessionID: "bogus", Username: "ann"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adm.Resumed {
			t.Error("unknown session treated as resume")
		}
		if adm.SessionID == "bogus" {
			t.Error("unknown session token reissued instead of replaced")
		}

		if _, err := o.Resolve(Credentials{SessionID: "bogus"}); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("err = %v, want ErrInvalidUsername", err)
		}
	})
}

func TestTokenUniqueness(t *testing.T) {
	t.Parallel()
	o := newTestOrchestrator()
	seen := make(map[string]struct{}, 20000)
	for i := 0; i < 10000; i++ {
		adm, err := o.Resolve(Credentials{Username: "ann"})
		if err != nil {
			t.Fatal(err)
		}
		if _, dup := seen[string(adm.SessionID)]; dup {
			t.Fatalf("duplicate session token after %d admissions", i)
		}
		if _, dup := seen[string(adm.UserID)]; dup {
			t.Fatalf("duplicate user token after %d admissions", i)
		}
		seen[string(adm.SessionID)] = struct{}{}
		seen[string(adm.UserID)] = struct{}{}
	}
}
