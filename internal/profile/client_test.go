package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, body string, status int) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop()), srv
}

func TestHasTag(t *testing.T) {
	tests := []struct {
		name string
		body string
		tag  string
		want bool
	}{
		{"vip gold", `{"loyaltyTier":"gold","totalVisits":5}`, "vip", true},
		{"vip platinum", `{"loyaltyTier":"platinum"}`, "vip", true},
		{"vip silver", `{"loyaltyTier":"silver"}`, "vip", false},
		{"frequent", `{"totalVisits":11}`, "frequent", true},
		{"not frequent", `{"totalVisits":10}`, "frequent", false},
		{"new", `{"totalVisits":2}`, "new", true},
		{"not new", `{"totalVisits":3}`, "new", false},
		{"complainer", `{"complaintCount":1}`, "complainer", true},
		{"no complaints", `{"complaintCount":0}`, "complainer", false},
		{"unknown tag", `{"loyaltyTier":"gold"}`, "mystery", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestClient(t, tt.body, http.StatusOK)
			defer srv.Close()

			if got := c.HasTag(context.Background(), "u1", tt.tag); got != tt.want {
				t.Errorf("HasTag(%s) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestHasTagFailsOpen(t *testing.T) {
	// Empty user id never hits the network
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond, zerolog.Nop())
	if c.HasTag(context.Background(), "", "vip") {
		t.Error("expected false for empty user id")
	}

	// Unreachable service degrades to false
	if c.HasTag(context.Background(), "u1", "vip") {
		t.Error("expected false when service unreachable")
	}

	// Non-200 degrades to false
	c2, srv := newTestClient(t, `{}`, http.StatusInternalServerError)
	defer srv.Close()
	if c2.HasTag(context.Background(), "u1", "vip") {
		t.Error("expected false on server error")
	}
}
