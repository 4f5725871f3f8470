// Package signal adapts the relay to gorilla websocket connections.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Presence/internal/app"
	"github.com/dkeye/Presence/internal/config"
	"github.com/dkeye/Presence/internal/core"
	"github.com/dkeye/Presence/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Orch *app.Orchestrator
	Cfg  *config.Config
}

func NewSignalWSController(orch *app.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch: orch,
		Cfg:  cfg,
	}
}

// WsSignalConn implements core.Conn over one websocket. Sends go
// through a buffered channel; a full buffer drops the frame instead of
// blocking the hub.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal evaluates the auth handshake from the upgrade request's
// query string, then upgrades and runs the connection. A rejected
// handshake answers 401 without completing the upgrade.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	creds := app.Credentials{
		SessionID: c.Query("sessionID"),
		Username:  c.Query("username"),
		PeerID:    c.Query("peerID"),
	}

	adm, err := ctl.Orch.Resolve(creds)
	if err != nil {
		metrics.Admissions.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	outcome := "fresh"
	if adm.Resumed {
		outcome = "resumed"
	}
	metrics.Admissions.WithLabelValues(outcome).Inc()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	cid := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("user", string(adm.UserID)).Str("conn", string(cid)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(adm, cid, conn)
	metrics.ActiveConnections.Inc()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, adm, cid, conn)
}
