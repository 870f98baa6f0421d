// Package api is the classifier service's HTTP and MCP surface. The wire
// contract is the one triage clients consume: submit an email, poll its
// job until done.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mailtriage/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

type CreateEmailRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Deps holds dependencies for the HTTP handlers.
type Deps struct {
	Store *storage.Store
}

// NewHandler builds the service router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Post("/emails", handleCreateEmail(deps))
	r.Get("/emails/{id}", handleEmailStatus(deps))
	r.Get("/health", handleHealth)

	return r
}

func handleCreateEmail(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req CreateEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "title or content is required")
			return
		}

		email := storage.Email{
			ID:      uuid.New().String(),
			Title:   req.Title,
			Content: req.Content,
		}
		if err := deps.Store.CreateEmail(email); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save email: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":     email.ID,
			"status": storage.StatusPending,
		})
	}
}

func handleEmailStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		email, err := deps.Store.GetEmail(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "email not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get email: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if email.Status != storage.StatusDone {
			// processing is still "pending" as far as clients are concerned.
			json.NewEncoder(w).Encode(map[string]string{
				"id":     email.ID,
				"status": storage.StatusPending,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":              email.ID,
			"status":          storage.StatusDone,
			"classification":  email.Classification,
			"suggested_reply": email.SuggestedReply,
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
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
