package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/autostream-ai/concierge/internal/convstate"
	"github.com/autostream-ai/concierge/internal/engine"
)

// fallbackMessage is shown in place of a generated answer when a turn
// fails. The conversation stays usable on the next turn.
const fallbackMessage = "Sorry, something went wrong on our side — please try sending that again."

// Processor is the engine surface the server needs.
type Processor interface {
	Process(ctx context.Context, conversationID, message string) ([]convstate.Message, *convstate.State, error)
}

type Server struct {
	router  *chi.Mux
	engine  Processor
	store   engine.StateStore
	port    int
	timeout time.Duration
}

func NewServer(eng Processor, store engine.StateStore, port int, timeout time.Duration) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		engine:  eng,
		store:   store,
		port:    port,
		timeout: timeout,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/concierge/status", s.status)
	router.Post("/api/v1/chat", s.chat)
	router.Get("/api/v1/conversations/{id}", s.conversation)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type wireMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatResponse struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []wireMessage `json:"messages"`
	Error          string        `json:"error,omitempty"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	produced, _, err := s.engine.Process(ctx, req.ConversationID, req.Message)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}
		slog.Error("chat turn failed",
			"conversation_id", req.ConversationID,
			"error", err,
		)
		writeJSON(w, http.StatusOK, chatResponse{
			ConversationID: req.ConversationID,
			Messages:       []wireMessage{{Role: convstate.RoleAssistant, Text: fallbackMessage}},
			Error:          errorKind(err),
		})
		return
	}

	out := make([]wireMessage, 0, len(produced))
	for _, msg := range produced {
		// Tool plumbing stays internal; callers only see the dialogue.
		if msg.Role == convstate.RoleTool || msg.ToolCallID != "" {
			continue
		}
		if msg.Role == convstate.RoleUser {
			continue
		}
		out = append(out, wireMessage{Role: msg.Role, Text: msg.Content})
	}
	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: req.ConversationID,
		Messages:       out,
	})
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load conversation"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "concierge",
		"status": "ready",
	})
}

// errorKind maps engine errors to stable wire identifiers.
func errorKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrTimeout):
		return "timeout"
	case errors.Is(err, engine.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, engine.ErrRetrieval):
		return "retrieval_failed"
	case errors.Is(err, engine.ErrStore):
		return "store_failed"
	case errors.Is(err, engine.ErrUpstreamGeneration):
		return "upstream_generation_failed"
	default:
		return "internal"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
