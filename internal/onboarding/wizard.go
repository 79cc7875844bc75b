// Package onboarding walks a user through writing calassist.yaml.
package onboarding

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"calassist/internal/config"
)

// Wizard asks one question per line and keeps the current value on an empty
// answer.
type Wizard struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Run starts from base and returns the edited configuration. Nothing is
// written; the caller decides where to save it.
func (w *Wizard) Run(base config.Application) (config.Application, error) {
	cfg := base
	fmt.Fprintln(w.out, "\nCalendar Assistant setup")
	fmt.Fprintln(w.out, "Press Enter to keep the value in brackets.")
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	fmt.Fprintln(w.out, "\n[1/3] Storage")
	cfg.Storage.Dir = w.askString("Data directory", cfg.Storage.Dir)

	fmt.Fprintln(w.out, "\n[2/3] Front doors")
	cfg.Web.Addr = w.askString("HTTP listen address", cfg.Web.Addr)
	cfg.TUI.Sidebar = w.askBool("Open the event sidebar on start", cfg.TUI.Sidebar)
	cfg.Chat.DelayScale = w.askFloat("Reply delay scale (0 = instant)", cfg.Chat.DelayScale)

	fmt.Fprintln(w.out, "\n[3/3] Intents")
	menu := NewIntentMenu(w.scanner, w.out)
	settings, err := menu.Run(cfg.Chat.DisabledIntents)
	if err != nil {
		return base, err
	}
	cfg.Chat.DisabledIntents = Disabled(settings)

	w.summarize(cfg)
	return cfg, w.scanner.Err()
}

func (w *Wizard) line() (string, bool) {
	if !w.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.scanner.Text()), true
}

func (w *Wizard) askString(label, def string) string {
	fmt.Fprintf(w.out, "%s [%s]: ", label, def)
	input, ok := w.line()
	if !ok || input == "" {
		return def
	}
	return input
}

func (w *Wizard) askBool(label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(w.out, "%s (%s): ", label, hint)
	input, ok := w.line()
	if !ok || input == "" {
		return def
	}
	input = strings.ToLower(input)
	return input == "y" || input == "yes"
}

func (w *Wizard) askFloat(label string, def float64) float64 {
	for {
		fmt.Fprintf(w.out, "%s [%g]: ", label, def)
		input, ok := w.line()
		if !ok || input == "" {
			return def
		}
		f, err := strconv.ParseFloat(input, 64)
		if err == nil && f >= 0 {
			return f
		}
		fmt.Fprintln(w.out, "Invalid value. Enter a number of zero or more.")
	}
}

func (w *Wizard) summarize(cfg config.Application) {
	fmt.Fprintln(w.out, "\n"+strings.Repeat("=", 40))
	fmt.Fprintln(w.out, "Setup Summary:")
	fmt.Fprintf(w.out, "Data dir:    %s\n", cfg.Storage.Dir)
	fmt.Fprintf(w.out, "HTTP addr:   %s\n", cfg.Web.Addr)
	fmt.Fprintf(w.out, "Sidebar:     %t\n", cfg.TUI.Sidebar)
	fmt.Fprintf(w.out, "Delay scale: %g\n", cfg.Chat.DelayScale)
	if len(cfg.Chat.DisabledIntents) > 0 {
		fmt.Fprintf(w.out, "Disabled:    %s\n", strings.Join(cfg.Chat.DisabledIntents, ", "))
	}
	fmt.Fprintln(w.out, strings.Repeat("=", 40))
}
