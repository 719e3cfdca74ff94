package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Target is an upstream API whose reachability is tracked.
type Target struct {
	Name string
	URL  string
}

type Options struct {
	Targets      []Target
	Redis        *redislib.Client
	CacheBackend string
	Interval     time.Duration
	ProbeTimeout time.Duration
	Logger       *zap.Logger
}

// Monitor periodically probes the platform APIs and the response cache.
type Monitor struct {
	targets      []Target
	http         *fasthttp.Client
	redis        *redislib.Client
	cacheBackend string
	probeTimeout time.Duration

	status Status
	mu     sync.RWMutex
	cron   *cron.Cron
	first  sync.WaitGroup
	logger *zap.Logger
}

func New(opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := &Monitor{
		targets:      opts.Targets,
		http:         &fasthttp.Client{Name: "learner-portal-monitor"},
		redis:        opts.Redis,
		cacheBackend: opts.CacheBackend,
		probeTimeout: opts.ProbeTimeout,
		cron:         cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:       opts.Logger,
	}

	schedule := fmt.Sprintf("@every %ds", max(1, int(opts.Interval.Seconds())))
	_, _ = m.cron.AddFunc(schedule, m.refresh)

	return m
}

// Start probes once right away and then on every tick.
func (m *Monitor) Start() {
	m.first.Add(1)
	go func() {
		defer m.first.Done()
		m.refresh()
	}()
	m.cron.Start()
}

// Stop halts the schedule and waits for running probes or ctx, whichever
// comes first.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	done := make(chan struct{})
	go func() {
		m.first.Wait()
		<-stopCtx.Done()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// IsOnline reports whether every dependency answered the last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

func (m *Monitor) refresh() {
	results := make([]bool, len(m.targets))
	var g errgroup.Group
	for i, target := range m.targets {
		i, target := i, target
		g.Go(func() error {
			results[i] = m.checkUpstream(target)
			return nil
		})
	}
	_ = g.Wait()

	status := Status{
		Upstreams: make(map[string]bool, len(m.targets)),
		Cache:     m.checkCache(),
		LastCheck: time.Now(),
	}
	for i, target := range m.targets {
		status.Upstreams[target.Name] = results[i]
		if !results[i] {
			m.logger.Warn("upstream unreachable", zap.String("service", target.Name), zap.String("url", target.URL))
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

// checkUpstream treats any non-5xx answer as reachable; the probe carries no
// learner credentials so 401 and 404 are expected.
func (m *Monitor) checkUpstream(target Target) bool {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target.URL)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := m.http.DoTimeout(req, resp, m.probeTimeout); err != nil {
		return false
	}
	return resp.StatusCode() < fasthttp.StatusInternalServerError
}

func (m *Monitor) checkCache() CacheStatus {
	status := CacheStatus{Backend: m.cacheBackend, Online: true}
	if m.redis == nil {
		return status
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.probeTimeout)
	defer cancel()
	status.Online = m.redis.Ping(ctx).Err() == nil
	return status
}
