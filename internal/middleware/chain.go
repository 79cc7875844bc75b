package middleware

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Chain evaluates intents in descending Priority() order and stops at the
// first one that matches. Equal priorities keep registration order.
type Chain struct {
	mu      sync.RWMutex
	intents []Intent

	debugMu sync.Mutex
	debugW  io.Writer
}

type DecisionResult struct {
	IntentID string
	Priority int
	Skipped  bool
	Decision Decision
}

func NewChain(intents ...Intent) *Chain {
	c := &Chain{}
	for _, in := range intents {
		c.Use(in)
	}
	return c
}

// SetDebugWriter enables JSONL debug logging for dispatch decisions.
// If w is nil, logging is disabled.
func (c *Chain) SetDebugWriter(w io.Writer) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.debugW = w
}

func (c *Chain) Use(in Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents = append(c.intents, in)
	c.sortLocked()
}

func (c *Chain) List() []Intent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Intent, len(c.intents))
	copy(out, c.intents)
	return out
}

// Dispatch evaluates intents until one matches. Every evaluated intent has a
// result; the matching one, if any, is last. An intent error stops dispatch
// and is returned with the results gathered so far.
func (c *Chain) Dispatch(ctx context.Context, e *Event) ([]DecisionResult, error) {
	intents := c.List()

	results := make([]DecisionResult, 0, len(intents))
	for _, in := range intents {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if cin, ok := in.(ConditionalIntent); ok && !cin.ShouldLoad(ctx, e) {
			dec := Decision{Reason: "skipped (ShouldLoad=false)"}
			c.debugLog(e, in.ID(), in.Priority(), true, dec, nil)
			results = append(results, DecisionResult{
				IntentID: in.ID(),
				Priority: in.Priority(),
				Skipped:  true,
				Decision: dec,
			})
			continue
		}

		dec, err := in.OnEvent(ctx, e)
		c.debugLog(e, in.ID(), in.Priority(), false, dec, err)
		if err != nil {
			return results, fmt.Errorf("intent %s: %w", in.ID(), err)
		}

		results = append(results, DecisionResult{
			IntentID: in.ID(),
			Priority: in.Priority(),
			Decision: dec,
		})
		if dec.Match {
			break
		}
	}
	return results, nil
}

// Matched returns the decision that answered the turn.
func Matched(results []DecisionResult) (DecisionResult, bool) {
	if len(results) == 0 {
		return DecisionResult{}, false
	}
	last := results[len(results)-1]
	if last.Skipped || !last.Decision.Match {
		return DecisionResult{}, false
	}
	return last, true
}

func (c *Chain) sortLocked() {
	sort.SliceStable(c.intents, func(i, j int) bool {
		return c.intents[i].Priority() > c.intents[j].Priority()
	})
}
