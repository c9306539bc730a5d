package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func limitedHandler(t *testing.T, mw func(http.Handler) http.Handler) (http.Handler, *int) {
	t.Helper()
	calls := 0
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	return h, &calls
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2,
		GeneralBurst:    5,
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler, calls := limitedHandler(t, rl.GeneralMiddleware())

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		w := doRequest(handler, "10.0.0.1:1234")
		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}
	if *calls != 5 {
		t.Errorf("handler call count = %d, want 5", *calls)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    2,
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler, calls := limitedHandler(t, rl.GeneralMiddleware())

	for i := 0; i < 2; i++ {
		doRequest(handler, "10.0.0.1:1234")
	}

	w := doRequest(handler, "10.0.0.1:1234")
	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if *calls != 2 {
		t.Errorf("handler call count = %d, want 2", *calls)
	}
}

// 制限はクライアントIPごとに独立している。
func TestRateLimitMiddleware_PerClientIsolation(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler, _ := limitedHandler(t, rl.GeneralMiddleware())

	doRequest(handler, "10.0.0.1:1234")
	if w := doRequest(handler, "10.0.0.1:1234"); w.Result().StatusCode != http.StatusTooManyRequests {
		t.Error("second request from the same client should be limited")
	}

	if w := doRequest(handler, "10.0.0.2:1234"); w.Result().StatusCode != http.StatusOK {
		t.Error("a different client must not be affected")
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", rl.GeneralLimiterCount())
	}
}

// ログイン制限はAPI全般の制限とは独立に動作する。
func TestLoginMiddleware_IndependentOfGeneral(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    100,
		LoginRate:       1,
		LoginBurst:      1,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	general, _ := limitedHandler(t, rl.GeneralMiddleware())
	login, _ := limitedHandler(t, rl.LoginMiddleware())

	doRequest(login, "10.0.0.1:1234")
	if w := doRequest(login, "10.0.0.1:1234"); w.Result().StatusCode != http.StatusTooManyRequests {
		t.Error("second login attempt should be limited")
	}

	// ログイン制限に達してもAPI全般は通る
	if w := doRequest(general, "10.0.0.1:1234"); w.Result().StatusCode != http.StatusOK {
		t.Error("general requests must not share the login budget")
	}

	if rl.LoginLimiterCount() != 1 {
		t.Errorf("LoginLimiterCount() = %d, want 1", rl.LoginLimiterCount())
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		LoginRate:       1,
		LoginBurst:      1,
		CleanupInterval: 10 * time.Millisecond,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler, _ := limitedHandler(t, rl.GeneralMiddleware())
	doRequest(handler, "10.0.0.1:1234")

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("GeneralLimiterCount() = %d, want 1", rl.GeneralLimiterCount())
	}

	// TTL（CleanupIntervalの2倍）経過後にエントリが回収される
	deadline := time.Now().Add(2 * time.Second)
	for rl.GeneralLimiterCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("GeneralLimiterCount() = %d after cleanup, want 0", rl.GeneralLimiterCount())
	}
}
