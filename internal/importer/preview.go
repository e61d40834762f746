package importer

import (
	"slices"
	"sync"
	"time"

	"github.com/jensholdgaard/player-auction/internal/roster"
)

// Batch is one successful import.
type Batch struct {
	Filename   string          `json:"filename"`
	ImportedAt time.Time       `json:"imported_at"`
	Players    []roster.Player `json:"players"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// Preview holds the most recent successful import for review. It is safe
// for concurrent use.
type Preview struct {
	mu    sync.RWMutex
	batch *Batch
}

// Set replaces the held batch.
func (p *Preview) Set(b Batch) {
	b.Players = slices.Clone(b.Players)
	b.Warnings = slices.Clone(b.Warnings)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.batch = &b
}

// Get returns a copy of the held batch. ok is false before the first import.
func (p *Preview) Get() (b Batch, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.batch == nil {
		return Batch{}, false
	}
	b = *p.batch
	b.Players = slices.Clone(b.Players)
	b.Warnings = slices.Clone(b.Warnings)
	return b, true
}
