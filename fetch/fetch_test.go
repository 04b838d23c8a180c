package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDiskCache(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, `{"v":1}`)
	dir := t.TempDir()
	cache := NewDiskCache(nil, dir, zerolog.Nop())
	today := date.New(2025, 3, 10)
	cache.today = func() date.Date { return today }
	c := New(WithTransport(cache))

	var got struct{ V int }
	for range 3 {
		require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/x", &got))
	}
	assert.Equal(t, 1, got.V)
	assert.Equal(t, int32(1), hits.Load(), "responses of the same day are cached")

	today = today.Add(1)
	_, err := c.Get(context.Background(), srv.URL+"/x")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "the cache expires the next day")
}

func TestDiskCache_ErrorsAreNotCached(t *testing.T) {
	srv, hits := countingServer(t, http.StatusServiceUnavailable, "down")
	c := New(WithDiskCache(t.TempDir()))

	for range 2 {
		_, err := c.Get(context.Background(), srv.URL)
		var status *StatusError
		require.True(t, errors.As(err, &status), "error %v", err)
		assert.Equal(t, http.StatusServiceUnavailable, status.Code)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_CancelledContext(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, "ok")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())
}
