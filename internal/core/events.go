package core

import (
	"encoding/json"

	"github.com/dkeye/Presence/internal/domain"
)

// Wire events. The envelope discriminator is named "event" because the
// private message payload owns a bare "type" field of its own.
const (
	EventSession          = "session"
	EventUsers            = "users"
	EventAddUser          = "add user"
	EventUserDisconnected = "user disconnected"
	EventPrivateMessage   = "private message"
	EventPrivateEndCall   = "private endcall"
	EventPing             = "ping"
	EventPong             = "pong"
	EventError            = "error"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SessionInfo is delivered once on admission so the client can persist
// its resumption token.
type SessionInfo struct {
	SessionID domain.SessionID `json:"sessionID"`
	UserID    domain.UserID    `json:"userID"`
	PeerID    domain.PeerID    `json:"peerID"`
}

// RosterEntry is one identity in the users listing. Offline identities
// stay listed with Connected false.
type RosterEntry struct {
	UserID    domain.UserID `json:"userID"`
	Username  string        `json:"username"`
	PeerID    domain.PeerID `json:"peerID"`
	Connected bool          `json:"connected"`
}

// UserAdded announces a newcomer to everyone else. The full roster
// rides along with the summary, matching what clients already expect.
type UserAdded struct {
	NewUser     RosterEntry   `json:"newUser"`
	UsersOnline []RosterEntry `json:"usersOnline"`
}

// PrivateMessage is a directed signaling payload. From is filled in by
// the router, never trusted from the sender.
type PrivateMessage struct {
	Content string        `json:"content"`
	Time    string        `json:"time"`
	Type    string        `json:"type"`
	From    domain.UserID `json:"from,omitempty"`
	To      domain.UserID `json:"to"`
}

// EndCall is a directed call-termination notice.
type EndCall struct {
	To domain.UserID `json:"to"`
}

// Marshal encodes an event into a wire frame.
func Marshal(event string, data any) (Frame, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
