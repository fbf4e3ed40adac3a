// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/user/magnus/internal/state"
	"github.com/user/magnus/internal/types"
)

// ChatHandler processes one inbound event and returns the reply message.
type ChatHandler func(ctx context.Context, event *types.InboundEvent) (*types.Message, error)

// Server is a lightweight HTTP surface for chat, task triggers, and
// session inspection.
type Server struct {
	tasks       *state.TaskStore
	handler     ChatHandler
	sessions    types.SessionStore
	attachments types.AttachmentStore
	mux         *http.ServeMux
}

// NewServer creates a Server with the given task store, chat handler, and stores.
func NewServer(tasks *state.TaskStore, handler ChatHandler, sessions types.SessionStore, attachments types.AttachmentStore) *Server {
	s := &Server{
		tasks:       tasks,
		handler:     handler,
		sessions:    sessions,
		attachments: attachments,
		mux:         http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /webhook/", s.handleNamedTask)
	s.mux.HandleFunc("GET /api/sessions", s.handleAPISessions)
	s.mux.HandleFunc("GET /api/sessions/", s.handleAPISession)
	s.mux.HandleFunc("GET /api/attachments/", s.handleAPIAttachment)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// uploadRequest is one inline attachment in a chat request. Data is base64.
type uploadRequest struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// chatRequest is the JSON body for POST /chat.
type chatRequest struct {
	Prompt     string          `json:"prompt"`
	SessionKey string          `json:"session_key"`
	Tool       string          `json:"tool,omitempty"`
	Uploads    []uploadRequest `json:"uploads,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	if req.SessionKey == "" || (req.Prompt == "" && len(req.Uploads) == 0) {
		http.Error(w, `{"error":"session_key and a prompt or upload are required"}`, http.StatusBadRequest)
		return
	}

	event := &types.InboundEvent{
		Source:     "http",
		SessionKey: types.SessionKey(req.SessionKey),
		Text:       req.Prompt,
		PinnedTool: types.ParseTool(req.Tool),
	}
	for _, u := range req.Uploads {
		event.Uploads = append(event.Uploads, types.Upload{
			Name:     u.Name,
			MimeType: u.MimeType,
			Data:     u.Data,
		})
	}

	reply, err := s.handler(r.Context(), event)
	if err != nil {
		slog.Error("chat handler failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

// namedTaskRequest is the optional JSON body for POST /webhook/{name}.
type namedTaskRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleNamedTask(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/webhook/")
	if name == "" {
		http.Error(w, `{"error":"task name required"}`, http.StatusBadRequest)
		return
	}

	task, err := s.tasks.Get(name)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}

	if !task.Enabled {
		http.Error(w, `{"error":"task is disabled"}`, http.StatusForbidden)
		return
	}

	prompt := task.Prompt

	// Allow body to override the prompt
	var body namedTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Prompt != "" {
		prompt = body.Prompt
	}

	reply, err := s.handler(r.Context(), &types.InboundEvent{
		Source:     "webhook",
		SessionKey: types.SessionKey(task.SessionKey),
		Text:       prompt,
		PinnedTool: types.ParseTool(task.Tool),
	})
	if err != nil {
		slog.Error("named task handler failed", "task", name, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

type sessionResponse struct {
	SessionID    string `json:"session_id"`
	SessionKey   string `json:"session_key"`
	Title        string `json:"title"`
	Personality  string `json:"personality"`
	MessageCount int    `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func (s *Server) handleAPISessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.Error(w, `{"error":"debug API not configured"}`, http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		slog.Error("list sessions failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	result := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionResponse{
			SessionID:    string(sess.ID),
			SessionKey:   string(sess.Key),
			Title:        sess.Title,
			Personality:  string(sess.Personality),
			MessageCount: len(sess.History),
			CreatedAt:    sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:    sess.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt > result[j].UpdatedAt
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		http.Error(w, `{"error":"debug API not configured"}`, http.StatusServiceUnavailable)
		return
	}

	// Path: /api/sessions/{id}
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	session, err := s.sessions.Get(r.Context(), types.SessionID(id))
	if err != nil {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

func (s *Server) handleAPIAttachment(w http.ResponseWriter, r *http.Request) {
	if s.attachments == nil {
		http.Error(w, `{"error":"attachments not configured"}`, http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/attachments/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	data, err := s.attachments.Get(r.Context(), types.AttachmentID(id))
	if err != nil {
		http.Error(w, `{"error":"attachment not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}
