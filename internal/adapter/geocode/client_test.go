package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCountryName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "48.600000", q.Get("lat"))
		assert.Equal(t, "38.000000", q.Get("lon"))
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "geopol-dashboard-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"country":"Ukraine"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "geopol-dashboard-test", 5*time.Second, testLogger())
	name, err := c.CountryName(context.Background(), 48.6, 38.0)
	require.NoError(t, err)
	assert.Equal(t, "Ukraine", name)
}

func TestCountryName_OpenOcean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"address":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ua", 5*time.Second, testLogger())
	name, err := c.CountryName(context.Background(), -40.0, -30.0)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestCountryName_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "ua", 5*time.Second, testLogger())
	_, err := c.CountryName(context.Background(), 48.6, 38.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
