// Package app holds the session/identity resolution and relay logic.
package app

import (
	"sync"

	"github.com/dkeye/Presence/internal/core"
	"github.com/dkeye/Presence/internal/store"
)

// Orchestrator coordinates the session store and the connection hub.
// The lifecycle mutex serializes connect/disconnect bookkeeping so the
// stored connected flag never disagrees with the hub's live count.
type Orchestrator struct {
	Store *store.Store
	Hub   *core.Hub

	lifecycle sync.Mutex
}

func NewOrchestrator(st *store.Store, hub *core.Hub) *Orchestrator {
	return &Orchestrator{
		Store: st,
		Hub:   hub,
	}
}
