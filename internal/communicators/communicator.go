// Package communicators holds the front doors a user can reach the assistant
// through. Each one registers itself from an init function.
package communicators

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"calassist/internal/gateway"
)

// Communicator is a front door (terminal, TUI, HTTP) that opens sessions on
// the gateway.
type Communicator interface {
	// ID returns the unique name of the communicator, e.g. "cli".
	ID() string

	// Start serves users until ctx is cancelled or the front door is done.
	Start(ctx context.Context, gw *gateway.Gateway) error
}

var (
	registry   = make(map[string]Communicator)
	registryMu sync.RWMutex
)

// Register adds a Communicator to the global registry.
func Register(c Communicator) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if c == nil {
		panic("communicator: Register communicator is nil")
	}
	if _, dup := registry[c.ID()]; dup {
		panic("communicator: Register called twice for communicator " + c.ID())
	}
	registry[c.ID()] = c
}

// Get returns a registered communicator by ID.
func Get(id string) (Communicator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("communicator '%s' not found", id)
	}
	return c, nil
}

// All returns every registered communicator sorted by ID.
func All() []Communicator {
	registryMu.RLock()
	defer registryMu.RUnlock()

	list := make([]Communicator, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	return list
}
