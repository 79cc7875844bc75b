package middleware

import (
	"io"
	"strings"
	"sync"
)

var (
	registryMu sync.Mutex
	// registry holds globally registered intents.
	registry []Intent
)

// Register should be called by intent packages (typically in init) to
// register themselves with the chain builder.
func Register(in Intent) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, in)
}

// Registered returns a shallow copy of all registered intents.
func Registered() []Intent {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]Intent, len(registry))
	copy(out, registry)
	return out
}

// NewChainFromRegistry builds a chain from all registered intents except the
// disabled IDs. If a debug writer is provided, it is attached for JSONL debug
// logs. Returns nil when nothing is left.
func NewChainFromRegistry(disabled []string, debugWriter io.Writer) *Chain {
	intents := Filter(Registered(), disabled)
	if len(intents) == 0 {
		return nil
	}
	c := NewChain(intents...)
	if debugWriter != nil {
		c.SetDebugWriter(debugWriter)
	}
	return c
}

// Filter drops intents whose ID is listed in disabled.
func Filter(intents []Intent, disabled []string) []Intent {
	if len(disabled) == 0 {
		return intents
	}
	off := make(map[string]struct{}, len(disabled))
	for _, id := range disabled {
		if id = strings.TrimSpace(id); id != "" {
			off[id] = struct{}{}
		}
	}
	out := make([]Intent, 0, len(intents))
	for _, in := range intents {
		if _, ok := off[in.ID()]; !ok {
			out = append(out, in)
		}
	}
	return out
}
