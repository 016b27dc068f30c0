package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spendHttp "github.com/MrJamesThe3rd/spendviz/internal/http"
	"github.com/MrJamesThe3rd/spendviz/internal/http/dashboard"
	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/session"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	h, err := dashboard.NewHandler(session.NewCache(time.Minute), report.NewService(0), dashboard.Options{})
	require.NoError(t, err)

	return spendHttp.New(spendHttp.Options{AllowedOrigins: []string{"https://app.example"}}, h)
}

func TestRouter(t *testing.T) {
	router := newRouter(t)

	type testCase struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{name: "Health", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "Index", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "Upload a spend report"},
		{name: "Stylesheet", method: http.MethodGet, path: "/static/app.css", wantStatus: http.StatusOK, wantBody: "nav.tabs"},
		{name: "Unknown Dataset", method: http.MethodGet, path: "/datasets/2f1b4c5e-8d6a-4f7b-9c3e-1a2b3c4d5e6f", wantStatus: http.StatusNotFound},
		{name: "Malformed Dataset ID", method: http.MethodGet, path: "/datasets/not-a-uuid", wantStatus: http.StatusNotFound},
		{name: "Unknown API Dataset", method: http.MethodGet, path: "/api/v1/datasets/2f1b4c5e-8d6a-4f7b-9c3e-1a2b3c4d5e6f/aggregate?by=account_name", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/datasets", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
