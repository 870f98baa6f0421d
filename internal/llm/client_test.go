package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	if !New(srv.URL).IsRunning(context.Background()) {
		t.Error("IsRunning = false for a healthy server")
	}

	srv.Close()
	if New(srv.URL).IsRunning(context.Background()) {
		t.Error("IsRunning = true for a closed server")
	}
}

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: Message{Role: "assistant", Content: "Productive"},
		})
	}))
	defer srv.Close()

	answer, err := New(srv.URL).Chat(context.Background(), "llama3.2", []Message{{Role: "user", Content: "classify this"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if answer != "Productive" {
		t.Errorf("answer = %q", answer)
	}
	if got.Model != "llama3.2" || got.Stream {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "classify this" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChatNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Chat(context.Background(), "m", nil); err == nil {
		t.Fatal("expected error on 500")
	}
}
