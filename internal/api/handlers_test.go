package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mailtriage/internal/storage"
)

func newTestHandler(t *testing.T) (http.Handler, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewHandler(Deps{Store: store}), store
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func TestCreateEmail(t *testing.T) {
	h, store := newTestHandler(t)

	rec := postJSON(t, h, "/emails", map[string]string{
		"title":   "Invoice",
		"content": "Payment due Friday.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	body := decodeBody(t, rec)
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("response has no id: %v", body)
	}
	if body["status"] != "pending" {
		t.Errorf("status = %v, want pending", body["status"])
	}

	saved, err := store.GetEmail(id)
	if err != nil {
		t.Fatalf("GetEmail: %v", err)
	}
	if saved.Title != "Invoice" || saved.Status != storage.StatusPending {
		t.Errorf("saved = %+v", saved)
	}
}

func TestCreateEmailRejectsEmpty(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postJSON(t, h, "/emails", map[string]string{"title": "  ", "content": "\n"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error envelope: %v", body)
	}
	if errObj["type"] != "invalid_request_error" {
		t.Errorf("error type = %v", errObj["type"])
	}
}

func TestCreateEmailRejectsBadJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/emails", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEmailStatusNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/emails/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj, _ := body["error"].(map[string]any)
	if errObj["type"] != "not_found" {
		t.Errorf("error type = %v", errObj["type"])
	}
}

func TestEmailStatusMasksProcessingAsPending(t *testing.T) {
	h, store := newTestHandler(t)

	if err := store.CreateEmail(storage.Email{ID: "e1", Title: "t", Content: "c"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ClaimPending(1); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/emails/e1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "pending" {
		t.Errorf("status = %v, want pending while processing", body["status"])
	}
	if _, present := body["classification"]; present {
		t.Errorf("classification leaked before done: %v", body)
	}
}

func TestEmailStatusDone(t *testing.T) {
	h, store := newTestHandler(t)

	if err := store.CreateEmail(storage.Email{ID: "e1", Title: "t", Content: "c"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteEmail("e1", "Unproductive", "No response recommended."); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/emails/e1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "done" {
		t.Errorf("status = %v", body["status"])
	}
	if body["classification"] != "Unproductive" {
		t.Errorf("classification = %v", body["classification"])
	}
	if body["suggested_reply"] != "No response recommended." {
		t.Errorf("suggested_reply = %v", body["suggested_reply"])
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}
