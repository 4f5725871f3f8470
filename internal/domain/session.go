// Package domain contains entity without logic, just meta-data
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

const (
	// TokenBytes is the entropy of session and user tokens.
	TokenBytes = 16

	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type (
	// SessionID is the secret resumption token issued to a client.
	SessionID string
	// UserID identifies a logical user, stable across reconnects.
	UserID string
	// PeerID identifies the client on the external media-relay side.
	PeerID string
)

// Session binds a resumption token to a logical user and its
// connectivity state. Owned exclusively by the store.
type Session struct {
	UserID    UserID
	Username  string
	PeerID    PeerID
	Connected bool
}

func NewSessionID() SessionID { return SessionID(randomToken()) }

func NewUserID() UserID { return UserID(randomToken()) }

func randomToken() string {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// ValidateUsername rejects names a fresh admission may not use.
func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
