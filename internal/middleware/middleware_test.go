package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/EventHub/internal/app_context"
	"github.com/SeakMengs/EventHub/internal/auth"
	"github.com/SeakMengs/EventHub/internal/config"
	ratelimiter "github.com/SeakMengs/EventHub/internal/rate_limiter"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, limit int) (*gin.Engine, *auth.JWT) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJwt(config.AuthConfig{JWT_SECRET: "middleware-secret"}, nil)
	app := &appcontext.Application{
		Logger:     zap.NewNop().Sugar(),
		JWTService: jwtService,
	}
	rl := ratelimiter.NewRateLimiter(config.RateLimiterConfig{RequestsPerTimeFrame: limit, TimeFrame: time.Hour, Enabled: true}, nil)
	t.Cleanup(rl.Stop)

	m := NewMiddleware(app, rl)
	r := gin.New()
	r.Use(m.RateLimiterMiddleware)
	r.GET("/me", m.AuthMiddleware, func(ctx *gin.Context) {
		user, _ := ctx.Get(auth.ContextUserKey)
		util.ResponseSuccess(ctx, user)
	})
	return r, jwtService
}

func TestAuthMiddleware(t *testing.T) {
	r, jwtService := newTestRouter(t, 100)

	token, err := jwtService.GenerateAccessToken(auth.JWTPayload{ID: "u1", Role: "organizer"}, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{name: "No header", header: "", status: http.StatusUnauthorized},
		{name: "Query token", target: "/me?token=" + token, status: http.StatusOK},
		{name: "Invalid query token", target: "/me?token=nope", status: http.StatusUnauthorized},
		{name: "Not bearer", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "Invalid token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "Valid token", header: "Bearer " + token, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			if target == "" {
				target = "/me"
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}

			var res util.Response
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if res.Success != (tt.status == http.StatusOK) {
				t.Errorf("unexpected success flag in %s", w.Body.String())
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	r, _ := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Errorf("expected a Retry-After header")
		}
	}

	// the first two pass the limiter and fail auth
	expected := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}
	for i := range expected {
		if codes[i] != expected[i] {
			t.Errorf("request %d: expected %d, got %d", i+1, expected[i], codes[i])
		}
	}
}
