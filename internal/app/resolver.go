package app

import (
	"errors"

	"github.com/dkeye/Presence/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrInvalidUsername is the only admission failure: no resumable
// session and no usable username.
var ErrInvalidUsername = errors.New("invalid username")

// Credentials is the auth handshake as asserted by the client.
type Credentials struct {
	SessionID string
	Username  string
	PeerID    string
}

// Admission is a resolved identity a connection may proceed with.
type Admission struct {
	SessionID domain.SessionID
	UserID    domain.UserID
	Username  string
	PeerID    domain.PeerID
	Resumed   bool
}

// Resolve decides fresh-identity vs resume-identity for one connection
// attempt. It never mutates the store; admission bookkeeping happens
// in Connect. An unknown session token degrades to a fresh attempt.
func (o *Orchestrator) Resolve(creds Credentials) (Admission, error) {
	if creds.SessionID != "" {
		sid := domain.SessionID(creds.SessionID)
		if sess, ok := o.Store.Find(sid); ok {
			log.Info().Str("module", "app.resolver").Str("user", string(sess.UserID)).Msg("session resumed")
			return Admission{
				SessionID: sid,
				UserID:    sess.UserID,
				Username:  sess.Username,
				PeerID:    domain.PeerID(creds.PeerID),
				Resumed:   true,
			}, nil
		}
	}

	if err := domain.ValidateUsername(creds.Username); err != nil {
		log.Warn().Str("module", "app.resolver").Err(err).Msg("admission rejected")
		return Admission{}, ErrInvalidUsername
	}

	adm := Admission{
		SessionID: domain.NewSessionID(),
		UserID:    domain.NewUserID(),
		Username:  creds.Username,
		PeerID:    domain.PeerID(creds.PeerID),
	}
	log.Info().Str("module", "app.resolver").Str("user", string(adm.UserID)).Str("username", adm.Username).Msg("fresh identity")
	return adm, nil
}
