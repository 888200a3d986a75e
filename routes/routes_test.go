package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/metrics"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-secret"

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

// Сервисы не нужны: проверяются только маршруты, отсекаемые до обработчика.
func newRouter(t *testing.T) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:        handlers.NewAuthHandler(nil, nil, secret, time.Hour, nil),
		Stage:       handlers.NewStageHandler(nil, nil),
		Team:        handlers.NewTeamHandler(nil),
		Match:       handlers.NewMatchHandler(nil),
		Bet:         handlers.NewBetHandler(nil),
		Leaderboard: handlers.NewLeaderboardHandler(nil),
		WebSocket:   handlers.NewWebSocketHandler(nil, nil, nil),
		Health:      handlers.NewHealthHandler(okPinger{}, nil),
	}, Options{
		JWTSecret:      secret,
		AllowedOrigins: []string{"*"},
		Metrics:        metrics.New().Handler(),
	})
	return router
}

func token(t *testing.T, superuser bool) string {
	t.Helper()
	tok, err := middleware.IssueToken([]byte(secret), &models.User{ID: 1, Username: "u", IsSuperuser: superuser}, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestPublicEndpoints(t *testing.T) {
	router := newRouter(t)

	for _, path := range []string{"/health", "/metrics", "/swagger/doc.json"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestProtectedEndpoints(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		method, path string
		auth         string
		status       int
	}{
		{http.MethodPost, "/bets", "", http.StatusUnauthorized},
		{http.MethodGet, "/bets/1", "", http.StatusUnauthorized},
		{http.MethodGet, "/auth/me", "", http.StatusUnauthorized},
		{http.MethodGet, "/stages/1/bets", "", http.StatusUnauthorized},
		{http.MethodPost, "/stages", "", http.StatusUnauthorized},
		{http.MethodPost, "/stages", token(t, false), http.StatusForbidden},
		{http.MethodPut, "/matches/1/score", token(t, false), http.StatusForbidden},
		{http.MethodPost, "/teams/1/logo", token(t, false), http.StatusForbidden},
		{http.MethodPost, "/auth/register", token(t, false), http.StatusForbidden},
		{http.MethodDelete, "/stages/1", "Bearer broken", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/bets", nil)
	req.Header.Set("Origin", "https://league.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
