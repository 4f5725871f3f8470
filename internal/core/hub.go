package core

import (
	"sync"

	"github.com/dkeye/Presence/internal/domain"
	"github.com/rs/zerolog/log"
)

// Hub owns the mapping from identity to its live connections. Keeping
// membership here, instead of in transport-layer groups, makes the
// remaining-connection count synchronous with join/leave.
type Hub struct {
	mu    sync.RWMutex
	users map[domain.UserID]map[ConnID]Conn
}

func NewHub() *Hub {
	return &Hub{
		users: make(map[domain.UserID]map[ConnID]Conn),
	}
}

func (h *Hub) Join(uid domain.UserID, cid ConnID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.users[uid]
	if !ok {
		group = make(map[ConnID]Conn)
		h.users[uid] = group
	}
	group[cid] = conn
	log.Info().Str("module", "core.hub").Str("user", string(uid)).Str("conn", string(cid)).Int("group", len(group)).Msg("connection joined")
}

// Leave removes one connection and reports how many the identity still
// has. The removal and the count happen under one lock so a racing
// reconnect is never miscounted.
func (h *Hub) Leave(uid domain.UserID, cid ConnID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.users[uid]
	if !ok {
		return 0
	}
	delete(group, cid)
	remaining := len(group)
	if remaining == 0 {
		delete(h.users, uid)
	}
	log.Info().Str("module", "core.hub").Str("user", string(uid)).Str("conn", string(cid)).Int("remaining", remaining).Msg("connection left")
	return remaining
}

func (h *Hub) Count(uid domain.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[uid])
}

// SendToUser delivers a frame to every connection of an identity except
// the given one. A dead connection is skipped, not an error. Returns
// the delivery count.
func (h *Hub) SendToUser(uid domain.UserID, except ConnID, f Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for cid, conn := range h.users[uid] {
		if cid == except {
			continue
		}
		if err := conn.TrySend(f); err != nil {
			log.Debug().Str("module", "core.hub").Str("conn", string(cid)).Err(err).Msg("send skipped")
			continue
		}
		sent++
	}
	return sent
}

// Broadcast delivers a frame to every connection except the given one.
func (h *Hub) Broadcast(except ConnID, f Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, group := range h.users {
		for cid, conn := range group {
			if cid == except {
				continue
			}
			if err := conn.TrySend(f); err != nil {
				log.Debug().Str("module", "core.hub").Str("conn", string(cid)).Err(err).Msg("broadcast skipped")
				continue
			}
			sent++
		}
	}
	return sent
}
