package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snetlabs/social-network/config"
)

func newTestProxy(t *testing.T, upstreamURL string) *Proxy {
	t.Helper()
	return NewProxy(config.GatewayConfig{
		UserServiceURL: upstreamURL,
		RequestTimeout: 2 * time.Second,
	}, slog.Default())
}

func TestRelay(t *testing.T) {
	t.Run("ForwardsBodyStatusAndHeaders", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/register", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"username":"alice","email":"a@x.com","password":"pw12345678"}`, string(body))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"message":"User registered successfully"}`))
		}))
		defer upstream.Close()

		proxy := newTestProxy(t, upstream.URL)

		body := `{"username":"alice","email":"a@x.com","password":"pw12345678"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		proxy.Relay("/register")(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"success":true,"message":"User registered successfully"}`, rr.Body.String())
	})

	t.Run("ForwardsAuthorizationHeader", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer some-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"username":"alice"}`))
		}))
		defer upstream.Close()

		proxy := newTestProxy(t, upstream.URL)

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rr := httptest.NewRecorder()
		proxy.Relay("/profile")(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("UpstreamErrorStatusPassesThrough", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"incorrect username or password"}`))
		}))
		defer upstream.Close()

		proxy := newTestProxy(t, upstream.URL)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"bad"}`))
		rr := httptest.NewRecorder()
		proxy.Relay("/login")(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "incorrect username or password")
	})

	t.Run("UnreachableUpstreamIs503", func(t *testing.T) {
		// A closed server returns connection refused immediately.
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		upstream.Close()

		proxy := newTestProxy(t, upstream.URL)

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rr := httptest.NewRecorder()
		proxy.Relay("/users")(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "service unavailable", resp["error"])
	})

	t.Run("TrailingSlashInBaseURLNormalized", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/users", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[]`))
		}))
		defer upstream.Close()

		proxy := newTestProxy(t, upstream.URL+"/")

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rr := httptest.NewRecorder()
		proxy.Relay("/users")(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
