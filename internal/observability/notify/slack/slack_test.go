package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tophhie/pds-welcomer/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.RunFailurePayload{
		RunID:      "run-123",
		Stage:      "listing",
		Listed:     0,
		Error:      "list accounts: unexpected status 503 Service Unavailable",
		ErrorClass: "listing",
		Metadata:   map[string]string{"store": "redis"},
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#alerts" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}

	text, ok := msg["text"].(string)
	if !ok {
		t.Fatalf("expected text field")
	}
	if !containsAll(
		text,
		[]string{"Welcome dispatch failure", "run-123", "listing", "503 Service Unavailable", "store: redis"},
	) {
		t.Fatalf("message text missing fields: %s", text)
	}
	if strings.Contains(text, "Accounts listed") {
		t.Fatalf("expected zero counts to be omitted: %s", text)
	}
}

func TestFormatMessageCountsAndEscaping(t *testing.T) {
	client, err := NewClient(Config{WebhookURL: "https://hooks.slack.com/services/test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.RunFailurePayload{
		Stage:  "accounts",
		Listed: 12,
		Failed: 2,
		Error:  "send email: <html> & more",
	})

	text, _ := msg["text"].(string)
	if !containsAll(text, []string{"Accounts listed: 12", "Accounts failed: 2", "&lt;html&gt; &amp; more"}) {
		t.Fatalf("unexpected text: %s", text)
	}
	if msg["username"] != "welcomer" {
		t.Fatalf("expected default username, got %v", msg["username"])
	}
}

func TestSendRunFailureRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := client.SendRunFailure(context.Background(), notify.RunFailurePayload{RunID: "r1"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestSendRunFailureReturnsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.SendRunFailure(context.Background(), notify.RunFailurePayload{RunID: "r1"})
	if err == nil || !strings.Contains(err.Error(), "no_service") {
		t.Fatalf("expected webhook error body in error, got %v", err)
	}
}

func containsAll(text string, substrs []string) bool {
	for _, s := range substrs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}
