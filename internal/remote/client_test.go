package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSubmitSendsDraftAndReturnsJobID(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "abc-123", "status": "pending"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL + "/")
	id, err := client.Submit(context.Background(), "Invoice", "Payment due.")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "abc-123" {
		t.Errorf("id = %q", id)
	}
	if gotBody["title"] != "Invoice" || gotBody["content"] != "Payment due." {
		t.Errorf("wire body = %v", gotBody)
	}
}

func TestSubmitNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL).Submit(context.Background(), "t", "b"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestSubmitMissingIDFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL).Submit(context.Background(), "t", "b"); err == nil {
		t.Fatal("expected error on response without id")
	}
}

func TestStatusDecodesPendingAndDone(t *testing.T) {
	responses := map[string]StatusResult{
		"p1": {Status: "pending"},
		"d1": {Status: "done", Classification: "Unproductive", SuggestedReply: "No response recommended."},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/emails/"):]
		res, ok := responses[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(res)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)

	pending, err := client.Status(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Status(p1): %v", err)
	}
	if pending.Done() {
		t.Errorf("pending job reported done")
	}

	done, err := client.Status(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Status(d1): %v", err)
	}
	if !done.Done() || done.Classification != "Unproductive" {
		t.Errorf("done result = %+v", done)
	}

	if _, err := client.Status(context.Background(), "missing"); err == nil {
		t.Errorf("expected error for 404")
	}
}

func TestServiceAwaitMapsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(StatusResult{
			Status:         "done",
			Classification: "Productive",
			SuggestedReply: "Thanks.",
		})
	}))
	defer srv.Close()

	svc := NewService(srv.URL, PollConfig{Interval: 5 * time.Millisecond, Timeout: time.Second})
	res, err := svc.Await(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if res.Classification != "Productive" || res.SuggestedReply != "Thanks." {
		t.Errorf("result = %+v", res)
	}
}
