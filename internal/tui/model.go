// Package tui is the two-pane terminal front door: the chat thread with an
// input line, and an event sidebar that sits beside the thread on wide
// terminals and opens as a drawer on narrow ones.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calassist/internal/auth"
	"calassist/internal/chat"
	"calassist/internal/event_bus"
	"calassist/internal/gateway"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

// Layout is the viewport class.
type Layout int

const (
	Compact Layout = iota
	Wide
)

// WideWidth is the first terminal width that gets the side-by-side layout.
const WideWidth = 100

const sidebarWidth = 38

func LayoutFor(width int) Layout {
	if width < WideWidth {
		return Compact
	}
	return Wide
}

func (l Layout) String() string {
	if l == Wide {
		return "wide"
	}
	return "compact"
}

// Bus traffic is forwarded to the program as these.
type (
	refreshMsg struct{}
	noticeMsg  chat.Notification
	authMsg    auth.State
)

type authDoneMsg struct {
	action string
	err    error
}

type turnDoneMsg struct {
	turn chat.Turn
	err  error
}

// Model drives one gateway.Session.
type Model struct {
	ctx  context.Context
	sess *gateway.Session
	loc  *time.Location

	input   textinput.Model
	thread  viewport.Model
	spinner spinner.Model

	width, height int
	layout        Layout
	sidebar       bool
	status        string
	statusErr     bool

	updates chan tea.Msg
	unsub   []func()
}

type Option func(*Model)

// WithSidebar sets whether the sidebar starts open.
func WithSidebar(open bool) Option {
	return func(m *Model) { m.sidebar = open }
}

func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.loc = loc
		}
	}
}

func New(ctx context.Context, sess *gateway.Session, opts ...Option) *Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your calendar..."
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		sess:    sess,
		loc:     time.Local,
		input:   ti,
		thread:  viewport.New(80, 20),
		spinner: sp,
		width:   80,
		height:  24,
		layout:  Compact,
		updates: make(chan tea.Msg, 32),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.subscribe()
	m.resize(m.width, m.height)
	return m
}

func (m *Model) subscribe() {
	bus := m.sess.Bus()
	refresh := func(event_bus.Event) error {
		m.forward(refreshMsg{})
		return nil
	}
	for _, t := range []event_bus.EventType{
		event_bus.MessageAppended,
		event_bus.EventsScheduled,
		event_bus.ProcessingChanged,
		event_bus.ThreadReset,
	} {
		m.unsub = append(m.unsub, bus.Subscribe(t, refresh))
	}
	m.unsub = append(m.unsub,
		event_bus.SubscribeTyped(bus, event_bus.Notification, func(e event_bus.EventT[chat.Notification]) error {
			m.forward(noticeMsg(e.Data))
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.AuthChanged, func(e event_bus.EventT[auth.State]) error {
			m.forward(authMsg(e.Data))
			return nil
		}),
	)
}

// forward never blocks the publisher. Refreshes are idempotent so a full
// queue only drops redundant ones.
func (m *Model) forward(msg tea.Msg) {
	select {
	case m.updates <- msg:
	default:
		log.Debugf("tui: update queue full, dropping %T", msg)
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Close detaches the model from the session bus.
func (m *Model) Close() {
	for _, u := range m.unsub {
		u()
	}
	m.unsub = nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.listen())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+k":
			m.sidebar = !m.sidebar
			m.resize(m.width, m.height)
			return m, nil
		case "ctrl+l":
			return m, m.login()
		case "ctrl+o":
			return m, m.logout()
		case "enter":
			return m, m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.thread, cmd = m.thread.Update(msg)
			return m, cmd
		}

	case refreshMsg:
		m.refresh()
		return m, m.listen()

	case noticeMsg:
		m.setStatus(fmt.Sprintf("%s: %s", msg.Title, msg.Description), msg.Variant == chat.VariantDestructive)
		return m, m.listen()

	case authMsg:
		m.refresh()
		return m, m.listen()

	case authDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		} else {
			m.setStatus(msg.action+" done", false)
		}
		m.refresh()
		return m, nil

	case turnDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, chat.ErrEmptyMessage) {
			m.setStatus(msg.err.Error(), true)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// CanSend reports whether enter would submit: signed in, nothing in flight.
func (m *Model) CanSend() bool {
	return m.sess.Authenticated() && !m.sess.Processing() && !m.sess.Loading()
}

func (m *Model) submit() tea.Cmd {
	text := m.input.Value()
	switch {
	case !m.sess.Authenticated():
		m.setStatus("Sign in with ctrl+l to start", true)
		return nil
	case m.sess.Processing() || m.sess.Loading():
		return nil
	case strings.TrimSpace(text) == "":
		return nil
	}
	m.input.Reset()
	m.setStatus("", false)
	return func() tea.Msg {
		turn, err := m.sess.SendMessage(m.ctx, text)
		return turnDoneMsg{turn: turn, err: err}
	}
}

func (m *Model) login() tea.Cmd {
	if m.sess.Authenticated() || m.sess.Loading() {
		return nil
	}
	m.setStatus("Signing in...", false)
	return func() tea.Msg {
		_, err := m.sess.Login(m.ctx)
		return authDoneMsg{action: "Sign in", err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	if !m.sess.Authenticated() || m.sess.Loading() {
		return nil
	}
	m.setStatus("Signing out...", false)
	return func() tea.Msg {
		return authDoneMsg{action: "Sign out", err: m.sess.Logout(m.ctx)}
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.layout = LayoutFor(width)

	w := m.threadWidth()
	// header, input and status lines plus the pane border
	h := max(height-5, 3)
	m.thread.Width = w
	m.thread.Height = h
	m.input.Width = max(width-4, 10)
	m.refresh()
}

func (m *Model) threadWidth() int {
	w := m.width - 2
	if m.layout == Wide && m.sidebar {
		w -= sidebarWidth + 2
	}
	return max(w, 20)
}

func (m *Model) refresh() {
	m.thread.SetContent(renderThread(m.sess.Messages(), m.thread.Width, m.loc))
	m.thread.GotoBottom()
}

// Layout is the current viewport class.
func (m *Model) Layout() Layout { return m.layout }

// SidebarOpen reports whether the sidebar is toggled on.
func (m *Model) SidebarOpen() bool { return m.sidebar }

// Status is the text of the status line.
func (m *Model) Status() string { return m.status }

func (m *Model) View() string {
	header := m.header()
	footer := lipgloss.JoinVertical(lipgloss.Left, m.input.View(), m.footer())

	var body string
	switch {
	case m.sidebar && m.layout == Wide:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			paneStyle.Render(m.thread.View()),
			m.sidebarView(sidebarWidth),
		)
	case m.sidebar:
		// the drawer covers the thread
		body = m.sidebarView(m.width - 2)
	default:
		body = paneStyle.Render(m.thread.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) header() string {
	who := "signed out"
	if u := m.sess.User(); u != nil && m.sess.Authenticated() {
		who = fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	busy := ""
	if m.sess.Processing() || m.sess.Loading() {
		busy = " " + m.spinner.View()
	}
	return titleStyle.Render("Calendar Assistant") + " " + helpStyle.Render(who) + busy
}

func (m *Model) sidebarView(width int) string {
	content := renderSidebar(m.sess.Groups(), width-4, m.loc)
	return paneStyle.
		Width(width).
		Height(m.thread.Height).
		MaxHeight(m.thread.Height + 2).
		Render(content)
}

func (m *Model) footer() string {
	if m.status != "" {
		if m.statusErr {
			return errorStyle.Render(m.status)
		}
		return statusStyle.Render(m.status)
	}
	keys := "enter send · ctrl+k events · ctrl+l sign in · esc quit"
	if m.sess.Authenticated() {
		keys = "enter send · ctrl+k events · ctrl+o sign out · esc quit"
	}
	return helpStyle.Render(keys)
}

// Run opens a session on gw and blocks until the user quits.
func Run(ctx context.Context, gw *gateway.Gateway) error {
	sess := gw.NewSession(ctx)
	defer sess.Close()

	m := New(ctx, sess, WithSidebar(gw.Config.TUI.Sidebar))
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
