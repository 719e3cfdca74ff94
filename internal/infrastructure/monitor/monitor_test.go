package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshProbesUpstreamsAndCache(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer up.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	mon := New(Options{
		Targets: []Target{
			{Name: "discovery", URL: up.URL},
			{Name: "lms", URL: failing.URL},
			{Name: "license_manager", URL: downURL},
		},
		Redis:        client,
		CacheBackend: "redis",
		ProbeTimeout: time.Second,
	})
	assert.False(t, mon.IsOnline(), "no probe has run yet")

	mon.refresh()

	status := mon.GetStatus()
	assert.Equal(t, map[string]bool{"discovery": true, "lms": false, "license_manager": false}, status.Upstreams)
	assert.Equal(t, CacheStatus{Backend: "redis", Online: true}, status.Cache)
	assert.False(t, mon.IsOnline())

	mr.Close()
	mon.refresh()
	assert.False(t, mon.GetStatus().Cache.Online)
}

func TestHealthyWithMemoryCache(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer up.Close()

	mon := New(Options{Targets: []Target{{Name: "discovery", URL: up.URL}}, CacheBackend: "memory"})
	mon.Start()
	defer mon.Stop(context.Background())

	require.Eventually(t, mon.IsOnline, 2*time.Second, 10*time.Millisecond)
}

func TestGetStatusReturnsCopy(t *testing.T) {
	mon := New(Options{})
	mon.status = Status{Upstreams: map[string]bool{"lms": true}, Cache: CacheStatus{Online: true}, LastCheck: time.Now()}

	status := mon.GetStatus()
	status.Upstreams["lms"] = false

	assert.True(t, mon.GetStatus().Upstreams["lms"])
}

func TestStopIsIdempotent(t *testing.T) {
	mon := New(Options{Interval: time.Hour})
	mon.Start()
	mon.Stop(context.Background())
	assert.NotPanics(t, func() { mon.Stop(context.Background()) })
}
