package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lunaredge/storefront/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewDefault("test")
	log.SetOutput(io.Discard)
	return log
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		if payload["email"] != "g@example.com" {
			t.Errorf("payload: %#v", payload)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "welcome back",
			"user":    map[string]string{"name": "Garvesh", "email": "g@example.com"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, quietLogger())
	result := client.Login(context.Background(), "g@example.com", "secret")

	if !result.Success {
		t.Fatalf("expected success: %#v", result)
	}
	if result.User == nil || result.User.Name != "Garvesh" {
		t.Fatalf("user not decoded: %#v", result.User)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid credentials"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, quietLogger())
	result := client.Login(context.Background(), "g@example.com", "wrong")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "invalid credentials" {
		t.Fatalf("message: %q", result.Message)
	}
}

func TestNetworkErrorIsRecovered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // unreachable from here on

	client := NewClient(srv.URL, quietLogger())
	result := client.Register(context.Background(), "garvesh", "g@example.com", "secret")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message == "" {
		t.Fatal("network failures must carry a user-facing message")
	}
}

func TestMalformedResponseIsNotReportedAsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html><body>502 Bad Gateway</body></html>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, quietLogger())
	result := client.Login(context.Background(), "g@example.com", "secret")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message == "could not reach the authentication service" {
		t.Fatal("a reachable server must not be reported as unreachable")
	}
	if result.Message == "" {
		t.Fatal("malformed responses must carry a user-facing message")
	}
}

func TestRateLimitThrottlesAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid credentials"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, quietLogger(), WithRateLimit(0.001, 2))

	for i := 0; i < 2; i++ {
		if r := client.Login(context.Background(), "g@example.com", "wrong"); r.Message != "invalid credentials" {
			t.Fatalf("attempt %d: %#v", i, r)
		}
	}
	throttled := client.Login(context.Background(), "g@example.com", "wrong")
	if throttled.Success || calls != 2 {
		t.Fatalf("third attempt should be throttled locally: calls=%d result=%#v", calls, throttled)
	}
}
