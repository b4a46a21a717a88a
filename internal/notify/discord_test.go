package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hamed0406/staffup/internal/domain"
)

func TestDiscord_OK(t *testing.T) {
	var gotPath, gotAuth, gotContent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		gotContent, _ = payload["content"].(string)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer ts.Close()

	d := NewDiscord("abc123")
	if d == nil {
		t.Fatal("expected discord client")
	}
	d.BaseURL = ts.URL

	if err := d.Send(context.Background(), 1234567890123456789, "Airport KLAX has 2 pilot(s) nearby"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if gotPath != "/channels/1234567890123456789/messages" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bot abc123" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if !strings.HasPrefix(gotContent, "Airport KLAX") {
		t.Fatalf("payload not as expected: %q", gotContent)
	}
}

func TestDiscord_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		_, _ = w.Write([]byte(`{"message":"Missing Access","code":50001}`))
	}))
	defer ts.Close()

	d := NewDiscord("x")
	d.BaseURL = ts.URL
	err := d.Send(context.Background(), 1, "Y")
	if err == nil {
		t.Fatalf("expected error on non-2xx")
	}
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Op != "send" {
		t.Fatalf("want send TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Missing Access") {
		t.Fatalf("want discord message in error, got %q", err.Error())
	}
}

func TestDiscord_DisabledWithoutToken(t *testing.T) {
	if NewDiscord("") != nil {
		t.Fatalf("empty token should disable the sender")
	}
	var d *Discord
	if err := d.Send(context.Background(), 1, "x"); err == nil {
		t.Fatalf("nil sender should refuse to send")
	}
}
