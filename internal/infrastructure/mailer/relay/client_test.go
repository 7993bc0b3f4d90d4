package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bzrsoft/bzr-portal/internal/core/domain"
)

func TestSendPostsFromAndRecipient(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/send" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := New(server.URL, "bzr@portal.rs")
	err := client.Send(context.Background(), domain.Email{
		To:      "office@gradnja.rs",
		Subject: "Podsetnik",
		Body:    "Rok ističe.",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if captured.From != "bzr@portal.rs" || captured.To != "office@gradnja.rs" {
		t.Fatalf("unexpected envelope: %+v", captured)
	}
	if captured.Subject != "Podsetnik" {
		t.Fatalf("unexpected subject: %q", captured.Subject)
	}
}

func TestSendIncludesRelayBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mailbox unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "bzr@portal.rs")
	err := client.Send(context.Background(), domain.Email{To: "office@gradnja.rs"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "mailbox unavailable") {
		t.Fatalf("expected relay body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("bad gateway must surface as temporary, got %v", err)
	}
}

func TestSendRejectsPermanentStatusWithoutTemporaryWrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown recipient", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := New(server.URL, "bzr@portal.rs")
	err := client.Send(context.Background(), domain.Email{To: "nobody@gradnja.rs"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("permanent rejection must not be marked temporary: %v", err)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	client := New("http://relay.invalid", "bzr@portal.rs")
	err := client.Send(context.Background(), domain.Email{Subject: "x"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
