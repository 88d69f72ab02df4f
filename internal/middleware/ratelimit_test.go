package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tienda-dashboard/internal/config"
)

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 2})
	h := RateLimit(limiter, testLogger())(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}

	disabled := NewRateLimiter(config.SecurityConfig{EnableRateLimit: false})
	for range 5 {
		if !disabled.Allow("10.0.0.2") {
			t.Fatal("disabled limiter should allow every request")
		}
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	limiter.Allow("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatal("second request inside the burst window should be refused")
	}

	clock = clock.Add(clientIdleTTL / 2)
	limiter.Allow("10.0.0.2")

	if n := limiter.Sweep(); n != 2 {
		t.Fatalf("Sweep() kept %d clients, want 2", n)
	}

	clock = clock.Add(clientIdleTTL/2 + time.Second)
	if n := limiter.Sweep(); n != 1 {
		t.Fatalf("Sweep() kept %d clients, want 1", n)
	}
	limiter.mu.Lock()
	_, stale := limiter.clients["10.0.0.1"]
	limiter.mu.Unlock()
	if stale {
		t.Error("idle client should have been dropped")
	}

	clock = clock.Add(clientIdleTTL)
	if n := limiter.Sweep(); n != 0 {
		t.Errorf("Sweep() kept %d clients, want 0", n)
	}
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	limiter.idleTTL = 0
	limiter.Allow("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		limiter.Run(ctx, time.Millisecond, testLogger())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		limiter.mu.Lock()
		n := len(limiter.clients)
		limiter.mu.Unlock()
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Run() never swept the idle client")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
