// Package httpapi exposes the chat bot over a small JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"supportbot/internal/analytics"
	"supportbot/internal/chat"
	"supportbot/internal/domain"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Bot is one conversation as seen by the API.
type Bot interface {
	ProcessQuery(ctx context.Context, query string) (chat.Result, error)
	ResetChat() chat.Status
}

// AnalyticsPort reports aggregated interaction statistics.
type AnalyticsPort interface {
	GetAnalytics(ctx context.Context) analytics.Report
}

// Deps holds what the handler needs. NewBot is called once per new session.
type Deps struct {
	NewBot      func() Bot
	Analytics   AnalyticsPort
	MaxSessions int
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type chatResponse struct {
	SessionID   string                `json:"session_id"`
	Response    string                `json:"response"`
	ContextDocs []domain.SearchResult `json:"context_docs"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// NewHandler returns the API router.
func NewHandler(deps Deps) http.Handler {
	sessions := newSessionStore(deps.NewBot, deps.MaxSessions)
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/api/chat", handleChat(sessions))
	r.Post("/api/reset", handleReset(sessions))
	r.Get("/api/analytics", handleAnalytics(deps.Analytics))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleChat(sessions *sessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if strings.TrimSpace(req.Query) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", chat.ErrEmptyQuery)
			return
		}

		id, bot := sessions.get(req.SessionID)
		res, err := bot.ProcessQuery(r.Context(), req.Query)
		if err != nil {
			status, kind := classify(err)
			if status >= 500 {
				slog.Error("chat request failed", "session", id, "error", err)
			}
			httpError(w, status, kind, "%v", err)
			return
		}
		docs := res.ContextDocs
		if docs == nil {
			docs = []domain.SearchResult{}
		}
		writeJSON(w, http.StatusOK, chatResponse{SessionID: id, Response: res.Response, ContextDocs: docs})
	}
}

func handleReset(sessions *sessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req resetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}
		// An unknown session has no history, which is what a reset produces anyway.
		st := chat.Status{Status: chat.ResetMessage}
		if bot, ok := sessions.lookup(req.SessionID); ok {
			st = bot.ResetChat()
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleAnalytics(a AnalyticsPort) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			httpError(w, http.StatusNotFound, "not_found", "analytics disabled")
			return
		}
		writeJSON(w, http.StatusOK, a.GetAnalytics(r.Context()))
	}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrEmptyQuery):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway, "api_error"
	case errors.Is(err, domain.ErrIndexNotFound):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
