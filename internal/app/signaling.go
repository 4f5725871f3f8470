package app

import (
	"github.com/dkeye/Presence/internal/core"
	"github.com/rs/zerolog/log"
)

// PrivateMessage forwards a directed message to every connection of
// the target identity and to the sender's own other connections, never
// back to the sending connection. A target with no live connections is
// a silent no-op. Returns the delivery count.
func (o *Orchestrator) PrivateMessage(from Admission, cid core.ConnID, msg core.PrivateMessage) int {
	msg.From = from.UserID
	frame, err := core.Marshal(core.EventPrivateMessage, msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Msg("marshal private message")
		return 0
	}
	sent := o.Hub.SendToUser(msg.To, cid, frame)
	if msg.To != from.UserID {
		sent += o.Hub.SendToUser(from.UserID, cid, frame)
	}
	log.Debug().Str("module", "app.signaling").Str("from", string(from.UserID)).Str("to", string(msg.To)).Int("sent", sent).Msg("private message routed")
	return sent
}

// PrivateEndCall forwards a call-termination notice to the same
// destination set as PrivateMessage, with an empty payload.
func (o *Orchestrator) PrivateEndCall(from Admission, cid core.ConnID, call core.EndCall) int {
	frame, err := core.Marshal(core.EventPrivateEndCall, struct{}{})
	if err != nil {
		log.Error().Err(err).Str("module", "app.signaling").Msg("marshal endcall")
		return 0
	}
	sent := o.Hub.SendToUser(call.To, cid, frame)
	if call.To != from.UserID {
		sent += o.Hub.SendToUser(from.UserID, cid, frame)
	}
	log.Debug().Str("module", "app.signaling").Str("from", string(from.UserID)).Str("to", string(call.To)).Int("sent", sent).Msg("endcall routed")
	return sent
}
