package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Presence/internal/app"
	"github.com/dkeye/Presence/internal/core"
	"github.com/dkeye/Presence/internal/metrics"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, adm app.Admission, cid core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("user", string(adm.UserID)).Str("conn", string(cid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.Disconnect(adm, cid)
		metrics.ActiveConnections.Dec()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(cid)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(adm, cid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(adm app.Admission, cid core.ConnID, c *WsSignalConn, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Event {
	case core.EventPrivateMessage:
		var msg core.PrivateMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad private message payload")
			ctl.sendJSON(c, core.EventError, map[string]any{"error": "bad_payload"})
			return
		}
		metrics.SignalEvents.WithLabelValues(core.EventPrivateMessage).Inc()
		sent := ctl.Orch.PrivateMessage(adm, cid, msg)
		metrics.Deliveries.Add(float64(sent))
	case core.EventPrivateEndCall:
		var call core.EndCall
		if err := json.Unmarshal(env.Data, &call); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad endcall payload")
			ctl.sendJSON(c, core.EventError, map[string]any{"error": "bad_payload"})
			return
		}
		metrics.SignalEvents.WithLabelValues(core.EventPrivateEndCall).Inc()
		sent := ctl.Orch.PrivateEndCall(adm, cid, call)
		metrics.Deliveries.Add(float64(sent))
	case core.EventPing:
		ctl.sendJSON(c, core.EventPong, nil)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, event string, data any) {
	frame, err := core.Marshal(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(frame)
}
