//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/oratoria/oratoria-backend/internal/adapter/postgres"
	cardrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/card"
	masteryrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/mastery"
	logrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/practicelog"
	sessionrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/session"
	speechrepo "github.com/oratoria/oratoria-backend/internal/adapter/postgres/speech"
	"github.com/oratoria/oratoria-backend/internal/adapter/postgres/testhelper"
	authpkg "github.com/oratoria/oratoria-backend/internal/auth"
	"github.com/oratoria/oratoria-backend/internal/config"
	"github.com/oratoria/oratoria-backend/internal/service/practice"
	"github.com/oratoria/oratoria-backend/internal/transport/middleware"
	"github.com/oratoria/oratoria-backend/internal/transport/rest"
)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *authpkg.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// testClock is the wall clock; E2E tests run against real time.
type testClock struct{}

func (testClock) Now() time.Time { return time.Now() }

// jwtValidator adapts the JWT manager to the auth middleware.
type jwtValidator struct{ mgr *authpkg.JWTManager }

func (v jwtValidator) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	return v.mgr.ValidateAccessToken(token)
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	srsConfig := config.SRSConfig{
		DefaultEaseFactor:  2.5,
		MinEaseFactor:      1.3,
		MaxEaseFactor:      3.0,
		GraduatingInterval: 1440,
		EasyInterval:       5760,
		LearningSteps:      []time.Duration{time.Minute, 10 * time.Minute},
	}
	practiceConfig := config.PracticeConfig{
		MatchThreshold:  0.5,
		Lookahead:       3,
		SimpleWords:     []string{"the", "a", "an", "and", "of", "to", "in", "that"},
		SimpleHideAfter: 2,
		HideAfter:       4,
		RecoveryMargin:  2,
	}

	svc := practice.NewService(
		logger,
		speechrepo.New(pool),
		cardrepo.New(pool),
		masteryrepo.New(pool),
		sessionrepo.New(pool),
		logrepo.New(pool),
		txm,
		testClock{},
		srsConfig.ToDomain(),
		practiceConfig.ToDomain(),
	)

	jwtMgr := authpkg.NewJWTManager("test-secret-at-least-32-chars-long!!", "test-issuer")

	mux := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(pool, "test-version"),
		Speech:  rest.NewSpeechHandler(svc, logger),
		Session: rest.NewSessionHandler(svc, logger),
		Stats:   rest.NewStatsHandler(svc, logger),
	})

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PATCH,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		middleware.Auth(jwtValidator{mgr: jwtMgr}),
	)(mux)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    jwtMgr,
	}
}

// newUserToken mints a valid access token for a fresh user ID. Users live in
// the identity service, so no rows are inserted.
func (ts *testServer) newUserToken(t *testing.T) (string, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	token, err := ts.jwt.GenerateAccessToken(userID, "user", 15*time.Minute)
	require.NoError(t, err)
	return token, userID
}

// doJSON sends a JSON request and decodes the response body into a map.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}
