package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"ewarranty/internal/config"
)

func TestLoginRateLimited(t *testing.T) {
	env := newTestApp(t)
	var last int
	entries := captureLogs(t, func() {
		for i := 0; i < 6; i++ {
			resp := env.json(t, "POST", "/api/auth/login", "", map[string]string{
				"email": env.cfg.AdminEmail, "password": "wrong-password",
			})
			last = resp.StatusCode
		}
	})
	if last != http.StatusTooManyRequests {
		t.Fatalf("6th attempt: expected 429, got %d", last)
	}
	if _, ok := findLog(entries, "rate.login.hit"); !ok {
		t.Fatal("expected rate.login.hit security log")
	}
}

func TestBodyLimit(t *testing.T) {
	env := newTestAppWith(t, func(c *config.Config) { c.BodyLimitMB = 1 })
	tok := env.login(t)

	big := bytes.Repeat([]byte("a"), 2<<20)
	req := httptest.NewRequest("POST", "/api/contact", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		// fasthttp may drop the connection before a response is written
		return
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}
