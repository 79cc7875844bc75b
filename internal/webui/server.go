package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"calassist/internal/calendar"
	"calassist/internal/chat"
	"calassist/internal/gateway"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

type ctxKey struct{}

// Server exposes one session over a JSON API.
type Server struct {
	gw     *gateway.Gateway
	sess   *gateway.Session
	addr   string
	router *mux.Router
}

// NewServer opens a session on gw and registers the routes.
func NewServer(ctx context.Context, gw *gateway.Gateway, addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{
		gw:     gw,
		sess:   gw.NewSession(ctx),
		addr:   addr,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Session() *gateway.Session { return s.sess }

func (s *Server) routes() {
	r := s.router
	r.Use(requestID)

	r.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/api/auth", s.handleAuth).Methods("GET")
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/api/auth/logout", s.handleLogout).Methods("POST")
	r.HandleFunc("/api/messages", s.handleMessages).Methods("GET")
	r.HandleFunc("/api/chat", s.handleChat).Methods("POST")
	r.HandleFunc("/api/events", s.handleEvents).Methods("GET")
	r.HandleFunc("/api/calendar.ics", s.handleICS).Methods("GET")
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	defer s.sess.Close()

	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("[WebUI] Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("[WebUI] Starting API on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webui server error: %w", err)
	}
	return nil
}

// requestID tags every request with an id, reusing the caller's when sent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		log.WithField("request_id", id).Debugf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the id requestID attached to ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type StatusResponse struct {
	Status        string `json:"status"`
	Time          string `json:"time"`
	Authenticated bool   `json:"authenticated"`
	Processing    bool   `json:"processing"`
	Loading       bool   `json:"loading"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Intent   string           `json:"intent,omitempty"`
	Messages []chat.Message   `json:"messages"`
	Events   []calendar.Event `json:"events"`
	Error    string           `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "online",
		Time:          s.sess.Now().Format(time.RFC3339),
		Authenticated: s.sess.Authenticated(),
		Processing:    s.sess.Processing(),
		Loading:       s.sess.Loading(),
	})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.AuthState())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.sess.Login(r.Context())
	if err != nil {
		log.WithField("request_id", RequestID(r.Context())).Errorf("login failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Login failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Logout(r.Context()); err != nil {
		log.WithField("request_id", RequestID(r.Context())).Errorf("logout failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Logout failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.sess.AuthState())
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Messages())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	turn, err := s.sess.SendMessage(r.Context(), req.Message)
	switch {
	case errors.Is(err, gateway.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Not signed in", err.Error())
		return
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Empty message", "'message' must not be blank")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Chat failed", err.Error())
		return
	}

	resp := ChatResponse{
		Intent:   turn.IntentID,
		Messages: turn.Messages,
		Events:   turn.Events,
	}
	if resp.Events == nil {
		resp.Events = []calendar.Event{}
	}
	if turn.Err != nil {
		resp.Error = turn.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.sess.Events()

	if b := strings.TrimSpace(r.URL.Query().Get("bucket")); b != "" {
		bucket := calendar.Bucket(b)
		switch bucket {
		case calendar.BucketToday, calendar.BucketTomorrow, calendar.BucketFuture:
		default:
			writeError(w, http.StatusBadRequest, "Invalid bucket", "'bucket' must be today, tomorrow or future")
			return
		}
		events = calendar.Filter(events, bucket, s.sess.Now())
	}

	if d := strings.TrimSpace(r.URL.Query().Get("date")); d != "" {
		day, err := time.ParseInLocation(calendar.DateLayout, d, s.sess.Now().Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
			return
		}
		events = calendar.OnDate(events, day)
	}

	if events == nil {
		events = []calendar.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	now := s.sess.Now()
	var buf bytes.Buffer
	err := calendar.WriteICS(&buf, s.sess.Events(), now.Location(), now)
	switch {
	case errors.Is(err, calendar.ErrNothingToExport):
		writeError(w, http.StatusNotFound, "Nothing to export", err.Error())
		return
	case err != nil:
		log.WithField("request_id", RequestID(r.Context())).Errorf("ics export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Export failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}
