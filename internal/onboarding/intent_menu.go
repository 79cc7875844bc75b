package onboarding

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"calassist/internal/middleware"
)

// IntentSetting is the user's choice for one registered intent.
type IntentSetting struct {
	ID       string
	Priority int
	Enabled  bool
}

// IntentMenu toggles registered intents on and off.
type IntentMenu struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewIntentMenu(scanner *bufio.Scanner, out io.Writer) *IntentMenu {
	return &IntentMenu{scanner: scanner, out: out}
}

// Run lists the intents in evaluation order, starting from the given
// disabled set, until the user picks 0 or input ends.
func (m *IntentMenu) Run(disabled []string) ([]IntentSetting, error) {
	registered := middleware.Registered()
	slices.SortStableFunc(registered, func(a, b middleware.Intent) int {
		return b.Priority() - a.Priority()
	})

	settings := make([]IntentSetting, len(registered))
	for i, in := range registered {
		settings[i] = IntentSetting{
			ID:       in.ID(),
			Priority: in.Priority(),
			Enabled:  !slices.Contains(disabled, in.ID()),
		}
	}

	for {
		fmt.Fprintln(m.out, "\nIntents (checked first to last):")
		fmt.Fprintln(m.out, strings.Repeat("-", 30))
		for i, s := range settings {
			status := "[ON] "
			if !s.Enabled {
				status = "[OFF]"
			}
			fmt.Fprintf(m.out, "%2d) %s %-12s priority %d\n", i+1, status, s.ID, s.Priority)
		}
		fmt.Fprintln(m.out, " 0) Finish")
		fmt.Fprint(m.out, "\nSelect a number to toggle (or 0 to finish): ")

		if !m.scanner.Scan() {
			break
		}
		input := strings.TrimSpace(m.scanner.Text())
		if input == "0" || input == "" {
			break
		}

		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(settings) {
			fmt.Fprintln(m.out, "Invalid selection. Please try again.")
			continue
		}
		settings[idx-1].Enabled = !settings[idx-1].Enabled
		if settings[idx-1].ID == "fallback" && !settings[idx-1].Enabled {
			fmt.Fprintln(m.out, "Warning: with fallback off, unmatched messages fail.")
		}
	}
	return settings, m.scanner.Err()
}

// Disabled lists the IDs switched off, in menu order.
func Disabled(settings []IntentSetting) []string {
	var out []string
	for _, s := range settings {
		if !s.Enabled {
			out = append(out, s.ID)
		}
	}
	return out
}
