package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jholhewres/jarvis/pkg/jarvis/assistant"
	"github.com/jholhewres/jarvis/pkg/jarvis/intent"
	"github.com/jholhewres/jarvis/pkg/jarvis/scheduler"
)

const maxBodyBytes = 64 << 10

// errorResponse is the consistent error format.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type textRequest struct {
	Text string `json:"text"`
}

type interpretResponse struct {
	Actions []intent.Action `json:"actions"`
}

type messageResponse struct {
	Actions []intent.Action    `json:"actions"`
	Results []assistant.Result `json:"results"`
}

type remindersResponse struct {
	Reminders []scheduler.Reminder `json:"reminders"`
}

func (g *Gateway) writeError(w http.ResponseWriter, msg string, code int) {
	g.writeJSON(w, code, errorResponse{Error: errorBody{Message: msg, Code: code}})
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readText decodes {"text": "..."} and rejects empty text.
func (g *Gateway) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		g.writeError(w, "invalid JSON body", http.StatusBadRequest)
		return "", false
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		g.writeError(w, "text is required", http.StatusBadRequest)
		return "", false
	}
	return text, true
}

// handleHealth implements GET /health
func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(g.startedAt).Round(time.Second).String(),
	})
}

// handleInterpret implements POST /api/interpret
func (g *Gateway) handleInterpret(w http.ResponseWriter, r *http.Request) {
	text, ok := g.readText(w, r)
	if !ok {
		return
	}
	g.writeJSON(w, http.StatusOK, interpretResponse{Actions: g.backend.Interpret(r.Context(), text)})
}

// handleMessage implements POST /api/message. Follow-up questions cannot
// be asked over HTTP, so missing slots are reported in the results.
func (g *Gateway) handleMessage(w http.ResponseWriter, r *http.Request) {
	text, ok := g.readText(w, r)
	if !ok {
		return
	}

	actions := g.backend.Interpret(r.Context(), text)
	results := g.backend.Execute(r.Context(), actions, nil)
	g.writeJSON(w, http.StatusOK, messageResponse{Actions: actions, Results: results})
}

// handleListReminders implements GET /api/reminders
func (g *Gateway) handleListReminders(w http.ResponseWriter, _ *http.Request) {
	if g.reminders == nil {
		g.writeJSON(w, http.StatusOK, remindersResponse{Reminders: []scheduler.Reminder{}})
		return
	}
	g.writeJSON(w, http.StatusOK, remindersResponse{Reminders: g.reminders.List()})
}

// handleDeleteReminder implements DELETE /api/reminders/{id}
func (g *Gateway) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if g.reminders == nil {
		g.writeError(w, "reminders are disabled", http.StatusNotFound)
		return
	}

	id := r.PathValue("id")
	if err := g.reminders.Remove(id); err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			g.writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		g.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
