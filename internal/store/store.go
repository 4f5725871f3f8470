// Package store keeps the authoritative session table in memory.
package store

import (
	"sync"

	"github.com/dkeye/Presence/internal/domain"
	"github.com/rs/zerolog/log"
)

// Store maps session tokens to session records. It is the single
// source of truth consulted by presence and signaling; records are
// never deleted for the life of the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]domain.Session
}

func New() *Store {
	return &Store{
		sessions: make(map[domain.SessionID]domain.Session),
	}
}

func (s *Store) Find(id domain.SessionID) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Save creates or merges a record. Empty UserID, Username and PeerID
// keep the stored value; Connected is always applied. On first
// creation unset fields take their zero values.
func (s *Store) Save(id domain.SessionID, sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.sessions[id]; ok {
		if sess.UserID == "" {
			sess.UserID = prev.UserID
		}
		if sess.Username == "" {
			sess.Username = prev.Username
		}
		if sess.PeerID == "" {
			sess.PeerID = prev.PeerID
		}
	}
	s.sessions[id] = sess
	log.Debug().Str("module", "store").Str("user", string(sess.UserID)).Bool("connected", sess.Connected).Msg("session saved")
}

// All returns a fresh snapshot of every record in unspecified order.
func (s *Store) All() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
