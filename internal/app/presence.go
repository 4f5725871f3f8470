package app

import (
	"github.com/dkeye/Presence/internal/core"
	"github.com/dkeye/Presence/internal/domain"
	"github.com/rs/zerolog/log"
)

// Connect registers an admitted connection: persists the session as
// connected, joins the identity group, hands the client its resumption
// token plus the roster, and announces the newcomer to everyone else.
func (o *Orchestrator) Connect(adm Admission, cid core.ConnID, conn core.Conn) {
	o.lifecycle.Lock()
	o.Store.Save(adm.SessionID, domain.Session{
		UserID:    adm.UserID,
		Username:  adm.Username,
		PeerID:    adm.PeerID,
		Connected: true,
	})
	o.Hub.Join(adm.UserID, cid, conn)
	o.lifecycle.Unlock()

	o.send(conn, core.EventSession, core.SessionInfo{
		SessionID: adm.SessionID,
		UserID:    adm.UserID,
		PeerID:    adm.PeerID,
	})

	roster := o.roster()
	o.send(conn, core.EventUsers, roster)

	var newUser core.RosterEntry
	for _, entry := range roster {
		if entry.UserID == adm.UserID {
			newUser = entry
			break
		}
	}
	if frame, err := core.Marshal(core.EventAddUser, core.UserAdded{
		NewUser:     newUser,
		UsersOnline: roster,
	}); err == nil {
		o.Hub.Broadcast(cid, frame)
	}

	log.Info().Str("module", "app.presence").Str("user", string(adm.UserID)).Str("conn", string(cid)).Bool("resumed", adm.Resumed).Msg("connection admitted")
}

// Disconnect drops one connection. Only when the identity's last
// connection is gone does the departure get announced and the session
// flagged offline; its peer id is left untouched as stale.
func (o *Orchestrator) Disconnect(adm Admission, cid core.ConnID) {
	o.lifecycle.Lock()
	remaining := o.Hub.Leave(adm.UserID, cid)
	if remaining > 0 {
		o.lifecycle.Unlock()
		return
	}
	o.Store.Save(adm.SessionID, domain.Session{
		UserID:    adm.UserID,
		Username:  adm.Username,
		Connected: false,
	})
	o.lifecycle.Unlock()

	if frame, err := core.Marshal(core.EventUserDisconnected, adm.UserID); err == nil {
		o.Hub.Broadcast("", frame)
	}
	log.Info().Str("module", "app.presence").Str("user", string(adm.UserID)).Msg("user disconnected")
}

func (o *Orchestrator) roster() []core.RosterEntry {
	sessions := o.Store.All()
	out := make([]core.RosterEntry, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, core.RosterEntry{
			UserID:    sess.UserID,
			Username:  sess.Username,
			PeerID:    sess.PeerID,
			Connected: sess.Connected,
		})
	}
	return out
}

func (o *Orchestrator) send(conn core.Conn, event string, data any) {
	frame, err := core.Marshal(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Str("event", event).Msg("marshal event")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.presence").Str("event", event).Msg("send skipped")
	}
}
