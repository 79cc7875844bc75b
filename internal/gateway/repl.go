package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"calassist/internal/auth"
	"calassist/internal/calendar"
	"calassist/internal/chat"
	"calassist/internal/event_bus"
)

const replHelp = "Commands: /login, /logout, /whoami, /events [today|tomorrow|future], /clear, /exit"

// Run is the line-oriented front door. Replies are printed as they land.
func (g *Gateway) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sess := g.NewSession(ctx)
	defer sess.Close()

	loc := time.Local
	unsub := printReplies(sess.Bus(), out, loc)
	defer unsub()

	fmt.Fprintln(out, "Calendar Assistant")
	fmt.Fprintln(out, replHelp)
	for _, m := range sess.Messages() {
		WriteMessage(out, m, loc)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = l
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(input, " ")
		switch cmd {
		case "/exit", "exit", "quit":
			return nil
		case "/help":
			fmt.Fprintln(out, replHelp)
		case "/login":
			fmt.Fprintln(out, "signing in...")
			if _, err := sess.Login(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			WriteWhoami(out, sess.AuthState())
			for _, m := range sess.Messages() {
				WriteMessage(out, m, loc)
			}
		case "/logout":
			if err := sess.Logout(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			for _, m := range sess.Messages() {
				WriteMessage(out, m, loc)
			}
		case "/whoami":
			WriteWhoami(out, sess.AuthState())
		case "/events":
			writeEvents(out, sess, strings.TrimSpace(arg), loc)
		case "/clear":
			sess.Clear(ctx)
			fmt.Fprintln(out, "conversation cleared")
		default:
			if _, err := sess.SendMessage(ctx, input); err != nil {
				if errors.Is(err, ErrNotAuthenticated) {
					fmt.Fprintln(out, "please sign in first with /login")
					continue
				}
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

// Execute sends a single message from a signed-in session and prints what
// comes back.
func (g *Gateway) Execute(ctx context.Context, input string, out io.Writer) error {
	sess := g.NewSession(ctx)
	defer sess.Close()

	unsub := printReplies(sess.Bus(), out, time.Local)
	defer unsub()

	turn, err := sess.SendMessage(ctx, input)
	if err != nil {
		return err
	}
	return turn.Err
}

func WriteWhoami(w io.Writer, st auth.State) {
	if !st.IsAuthenticated || st.User == nil {
		fmt.Fprintln(w, "not signed in")
		return
	}
	fmt.Fprintf(w, "signed in as %s <%s>\n", st.User.Name, st.User.Email)
}

func writeEvents(w io.Writer, sess *Session, bucket string, loc *time.Location) {
	switch calendar.Bucket(bucket) {
	case calendar.BucketNone:
		WriteGroups(w, sess.Groups(), loc)
	case calendar.BucketToday, calendar.BucketTomorrow, calendar.BucketFuture:
		events := calendar.Filter(sess.Events(), calendar.Bucket(bucket), sess.Now())
		if len(events) == 0 {
			fmt.Fprintln(w, "no events")
		}
		for _, e := range events {
			fmt.Fprintf(w, "  %s\n", Card(e, loc))
		}
	default:
		fmt.Fprintf(w, "unknown bucket %q (today, tomorrow or future)\n", bucket)
	}
}

// printReplies echoes agent and system messages and notifications as they
// are published. User messages are already on screen.
func printReplies(bus *event_bus.EventBus, out io.Writer, loc *time.Location) func() {
	unsubMsg := event_bus.SubscribeTyped(bus, event_bus.MessageAppended, func(e event_bus.EventT[chat.Message]) error {
		if e.Data.Type != chat.TypeUser {
			WriteMessage(out, e.Data, loc)
		}
		return nil
	})
	unsubNote := event_bus.SubscribeTyped(bus, event_bus.Notification, func(e event_bus.EventT[chat.Notification]) error {
		fmt.Fprintf(out, "! %s: %s\n", e.Data.Title, e.Data.Description)
		return nil
	})
	return func() {
		unsubMsg()
		unsubNote()
	}
}
