package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/communicators"
	_ "calassist/internal/communicators/cli"
	_ "calassist/internal/communicators/terminal"
	"calassist/internal/communicators/web"
	"calassist/internal/config"
	"calassist/internal/gateway"
	"calassist/internal/logging"
	"calassist/internal/onboarding"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	logLevel   string

	cfg config.Application
	gw  *gateway.Gateway
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "calassist",
		Short:         "Chat with a mock calendar assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.gw == nil {
				return nil
			}
			return a.gw.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.start(cmd.Context(), "cli")
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "calassist.yaml", "path to the yaml config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides log.level)")

	root.AddCommand(
		a.chatCmd(),
		a.tuiCmd(),
		a.serveCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.eventsCmd(),
		a.exportCmd(),
		a.setupCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := logging.Setup(cfg.Log.Level, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.cfg = cfg

	// setup only edits the file
	if cmd.Name() == "setup" {
		return nil
	}
	gw, err := gateway.New(cfg)
	if err != nil {
		return err
	}
	a.gw = gw
	return nil
}

func (a *app) start(ctx context.Context, id string) error {
	c, err := communicators.Get(id)
	if err != nil {
		return err
	}
	log.Debugf("starting %s front door", c.ID())
	return c.Start(ctx, a.gw)
}

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Line-oriented chat; with a message, send it once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.start(cmd.Context(), "cli")
			}
			err := a.gw.Execute(cmd.Context(), strings.Join(args, " "), cmd.OutOrStdout())
			if errors.Is(err, gateway.ErrNotAuthenticated) {
				return fmt.Errorf("%w (run `calassist login` first)", err)
			}
			return err
		},
	}
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Full-screen chat with the event sidebar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.start(cmd.Context(), "tui")
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return (&web.Adapter{Addr: addr}).Start(cmd.Context(), a.gw)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides web.addr)")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in as the mock user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := a.gw.NewSession(cmd.Context())
			defer sess.Close()
			state, err := sess.Login(cmd.Context())
			if err != nil {
				return err
			}
			gateway.WriteWhoami(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := a.gw.NewSession(cmd.Context())
			defer sess.Close()
			if err := sess.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored auth state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := a.gw.NewSession(cmd.Context())
			defer sess.Close()
			gateway.WriteWhoami(cmd.OutOrStdout(), sess.AuthState())
			return nil
		},
	}
}

func (a *app) eventsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:       "events [today|tomorrow|future]",
		Short:     "List the events of a fresh session",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"today", "tomorrow", "future"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := a.gw.NewSession(cmd.Context())
			defer sess.Close()
			out := cmd.OutOrStdout()

			if date != "" {
				day, err := time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				return writeCards(out, sess.OnDate(day))
			}
			if len(args) == 0 {
				gateway.WriteGroups(out, sess.Groups(), time.Local)
				return nil
			}
			bucket := calendar.Bucket(args[0])
			switch bucket {
			case calendar.BucketToday, calendar.BucketTomorrow, calendar.BucketFuture:
			default:
				return fmt.Errorf("unknown bucket %q", args[0])
			}
			return writeCards(out, calendar.Filter(sess.Events(), bucket, sess.Now()))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "only events on this day (YYYY-MM-DD)")
	return cmd
}

func writeCards(w io.Writer, events []calendar.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "no events")
		return err
	}
	for _, e := range events {
		if _, err := fmt.Fprintf(w, "  %s\n", gateway.Card(e, time.Local)); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session's events as an iCalendar file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := a.gw.NewSession(cmd.Context())
			defer sess.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			err := calendar.WriteICS(w, sess.Events(), time.Local, sess.Now())
			if errors.Is(err, calendar.ErrNothingToExport) && !sess.Authenticated() {
				return fmt.Errorf("%w (sign in with `calassist login` to get the seed calendar)", err)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}

func (a *app) setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively write the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := onboarding.NewWizard(cmd.InOrStdin(), cmd.OutOrStdout()).Run(a.cfg)
			if err != nil {
				return err
			}
			if err := config.Save(a.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", a.configPath)
			return nil
		},
	}
}
