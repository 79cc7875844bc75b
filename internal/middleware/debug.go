package middleware

import (
	"encoding/json"
	"io"
	"time"
	"unicode/utf8"
)

type debugEntry struct {
	Timestamp string `json:"ts"`
	IntentID  string `json:"intent"`
	Priority  int    `json:"priority"`
	Skipped   bool   `json:"skipped,omitempty"`
	Matched   bool   `json:"matched,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`

	InputChars int    `json:"in_chars"`
	Normalized string `json:"normalized,omitempty"`
	Replies    int    `json:"replies"`
	Scheduled  int    `json:"scheduled"`
	DelayMS    int64  `json:"delay_ms"`
}

func (c *Chain) debugLog(e *Event, id string, priority int, skipped bool, dec Decision, err error) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	if c.debugW == nil {
		return
	}

	var delay time.Duration
	for _, r := range dec.Replies {
		delay += r.Delay
	}

	entry := debugEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		IntentID:  id,
		Priority:  priority,
		Skipped:   skipped,
		Matched:   dec.Match,
		Reason:    dec.Reason,
		Replies:   len(dec.Replies),
		Scheduled: len(dec.Schedule),
		DelayMS:   delay.Milliseconds(),
	}
	if e != nil {
		entry.InputChars = utf8.RuneCountInString(e.UserText)
		entry.Normalized = e.Normalized
	}
	if err != nil {
		entry.Error = err.Error()
	}

	b, jerr := json.Marshal(entry)
	if jerr != nil {
		return
	}
	_, _ = io.WriteString(c.debugW, string(b)+"\n")
}
