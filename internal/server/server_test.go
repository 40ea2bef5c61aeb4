package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/marketpulse/internal/app"
	"github.com/bobmcallan/marketpulse/internal/common"
)

const testJWTSecret = "test-secret-key"

// fakeUpstream serves canned Alpha Vantage bodies keyed by function name
type fakeUpstream struct {
	*httptest.Server
	bodies map[string]string
	calls  atomic.Int32
}

func newFakeUpstream(t *testing.T, bodies map[string]string) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{bodies: bodies}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		body, ok := f.bodies[r.URL.Query().Get("function")]
		if !ok {
			body = `{}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	return f
}

// newTestServer builds a Server over a real App. upstream may be nil for a keyless setup.
func newTestServer(t *testing.T, upstream *fakeUpstream) *Server {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Cache.SweepSchedule = ""
	config.Auth.JWTSecret = testJWTSecret
	config.Clients.AlphaVantage.RateLimit = 0
	if upstream != nil {
		config.Clients.AlphaVantage.APIKey = "demo"
		config.Clients.AlphaVantage.BaseURL = upstream.URL
	}

	a, err := app.NewAppWithConfig(config, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return NewServer(a)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := SignAdminToken("ops@example.com", time.Hour, &common.AuthConfig{JWTSecret: testJWTSecret})
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, srv *Server, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
