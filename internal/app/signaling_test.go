package app

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Presence/internal/core"
)

// wire sets up ann and bob with two connections each and returns the
// orchestrator plus the connections keyed for assertions.
func wire(t *testing.T) (o *Orchestrator, ann, bob Admission, a1, a2, b1, b2 *fakeConn) {
	t.Helper()
	o = newTestOrchestrator()
	a1, a2, b1, b2 = &fakeConn{}, &fakeConn{}, &fakeConn{}, &fakeConn{}

	ann = admit(t, o, "ann", "p-ann")
	o.Connect(ann, "c-a1", a1)
	annTab, err := o.Resolve(Credentials{SessionID: string(ann.SessionID)})
	if err != nil {
		t.Fatal(err)
	}
	o.Connect(annTab, "c-a2", a2)

	bob = admit(t, o, "bob", "p-bob")
	o.Connect(bob, "c-b1", b1)
	bobTab, err := o.Resolve(Credentials{SessionID: string(bob.SessionID)})
	if err != nil {
		t.Fatal(err)
	}
	o.Connect(bobTab, "c-b2", b2)
	return
}

func TestPrivateMessage(t *testing.T) {
	t.Run("FanOut", func(t *testing.T) {
		o, ann, bob, a1, a2, b1, b2 := wire(t)

		sent := o.PrivateMessage(ann, "c-a1", core.PrivateMessage{
			Content: "hi",
			Time:    "12:04",
			Type:    "text",
			To:      bob.UserID,
		})
		if sent != 3 {
			t.Fatalf("deliveries = %d, want 3 (both of bob's, ann's other)", sent)
		}
		if got := a1.countOf(t, core.EventPrivateMessage); got != 0 {
			t.Errorf("sending connection received its own message %d times", got)
		}
		for name, conn := range map[string]*fakeConn{"a2": a2, "b1": b1, "b2": b2} {
			if got := conn.countOf(t, core.EventPrivateMessage); got != 1 {
				t.Errorf("%s received %d copies, want 1", name, got)
			}
		}

		for _, env := range b1.events(t) {
			if env.Event != core.EventPrivateMessage {
				continue
			}
			var msg core.PrivateMessage
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.From != ann.UserID {
				t.Errorf("from = %q, want sender identity %q", msg.From, ann.UserID)
			}
			if msg.Content != "hi" || msg.Time != "12:04" || msg.Type != "text" || msg.To != bob.UserID {
				t.Errorf("payload mangled in transit: %+v", msg)
			}
		}
	})

	t.Run("SpoofedFromOverwritten", func(t *testing.T) {
		o, ann, bob, _, _, b1, _ := wire(t)

		o.PrivateMessage(ann, "c-a1", core.PrivateMessage{
			Content: "hi",
			From:    "forged",
			To:      bob.UserID,
		})
		for _, env := range b1.events(t) {
			if env.Event != core.EventPrivateMessage {
				continue
			}
			var msg core.PrivateMessage
			if err := json.Unmarshal(env.Data, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.From != ann.UserID {
				t.Errorf("router forwarded forged from %q", msg.From)
			}
		}
	})

	t.Run("OfflineTargetSilent", func(t *testing.T) {
		o, ann, _, a1, a2, _, _ := wire(t)

		sent := o.PrivateMessage(ann, "c-a1", core.PrivateMessage{Content: "hi", To: "nobody"})
		// Only ann's other connection sees the outgoing copy.
		if sent != 1 {
			t.Fatalf("deliveries = %d, want 1", sent)
		}
		if got := a2.countOf(t, core.EventPrivateMessage); got != 1 {
			t.Errorf("sender's other device got %d copies, want 1", got)
		}
		if got := a1.countOf(t, core.EventPrivateMessage); got != 0 {
			t.Errorf("sending connection got %d copies, want 0", got)
		}
	})

	t.Run("SelfTargetNoDuplicates", func(t *testing.T) {
		o, ann, _, a1, a2, _, _ := wire(t)

		sent := o.PrivateMessage(ann, "c-a1", core.PrivateMessage{Content: "note", To: ann.UserID})
		if sent != 1 {
			t.Fatalf("deliveries = %d, want 1", sent)
		}
		if got := a2.countOf(t, core.EventPrivateMessage); got != 1 {
			t.Errorf("own other device got %d copies, want exactly 1", got)
		}
		if got := a1.countOf(t, core.EventPrivateMessage); got != 0 {
			t.Error("sending connection received its self-addressed message")
		}
	})
}

func TestPrivateEndCall(t *testing.T) {
	o, ann, bob, a1, a2, b1, b2 := wire(t)

	sent := o.PrivateEndCall(ann, "c-a1", core.EndCall{To: bob.UserID})
	if sent != 3 {
		t.Fatalf("deliveries = %d, want 3", sent)
	}
	if got := a1.countOf(t, core.EventPrivateEndCall); got != 0 {
		t.Error("sending connection received the endcall")
	}
	for name, conn := range map[string]*fakeConn{"a2": a2, "b1": b1, "b2": b2} {
		if got := conn.countOf(t, core.EventPrivateEndCall); got != 1 {
			t.Errorf("%s received %d endcalls, want 1", name, got)
		}
	}

	// Forwarded payload is an empty object, no target echo.
	for _, env := range b1.events(t) {
		if env.Event != core.EventPrivateEndCall {
			continue
		}
		if string(env.Data) != "{}" {
			t.Errorf("endcall payload = %s, want {}", env.Data)
		}
	}
}
