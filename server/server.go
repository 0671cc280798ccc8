// Package server exposes the HTTP surface: the streaming chat endpoint,
// conversation history CRUD, and health.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/socialstudio/studio/agent"
	"github.com/socialstudio/studio/conversation"
	"github.com/socialstudio/studio/event"
	"github.com/socialstudio/studio/log"
	"github.com/socialstudio/studio/tool"
)

// defaultUserID owns all conversations; the API is single-tenant.
const defaultUserID = "default"

// ChatRunner runs one content generation turn, sending events to out.
type ChatRunner interface {
	Run(ctx context.Context, req agent.Request, out chan<- event.Event) error
}

// Option configures a Server.
type Option func(*Server)

// WithImageGenerator enables the post-stream image fallback path.
func WithImageGenerator(images *tool.ImageGenerator) Option {
	return func(s *Server) { s.images = images }
}

// WithAllowedOrigins sets the CORS allowlist. Defaults to "*".
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// Server wires the routes to the agent runner and conversation store.
type Server struct {
	runner         ChatRunner
	conversations  conversation.Service
	images         *tool.ImageGenerator
	allowedOrigins []string
	router         *mux.Router
}

// New creates a Server.
func New(runner ChatRunner, conversations conversation.Service, opt ...Option) *Server {
	s := &Server{
		runner:         runner,
		conversations:  conversations,
		allowedOrigins: []string{"*"},
		router:         mux.NewRouter(),
	}
	for _, o := range opt {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/conversations", s.handleListConversations).Methods(http.MethodGet)
	s.router.HandleFunc("/api/conversations/{id}", s.handleGetConversation).Methods(http.MethodGet)
	s.router.HandleFunc("/api/conversations/{id}", s.handleDeleteConversation).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"service":       "social-studio",
		"observability": "opentelemetry",
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.conversations.List(r.Context(), defaultUserID)
	if err != nil {
		log.Errorf("list conversations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	if summaries == nil {
		summaries = []conversation.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conv, err := s.conversations.Get(r.Context(), id)
	if errors.Is(err, conversation.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	if err != nil {
		log.Errorf("get conversation %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.conversations.Delete(r.Context(), id)
	if errors.Is(err, conversation.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	if err != nil {
		log.Errorf("delete conversation %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("write response: %v", err)
	}
}
