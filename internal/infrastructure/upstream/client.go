package upstream

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/internal/infrastructure/metrics"
	"github.com/fastygo/learner-portal/pkg/casing"
	appLogger "github.com/fastygo/learner-portal/pkg/logger"
	"github.com/fastygo/learner-portal/repository"
)

// TokenSource supplies the bearer token of the learner a request is made for.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", domain.ErrMissingBearerToken
		}
		return token, nil
	}
}

// CachePolicy tells the client whether and how a response may be cached.
type CachePolicy int

const (
	NoCache CachePolicy = iota
	// SharedCache responses are identical for every learner.
	SharedCache
	// PerUserCache responses are keyed by the learner's token as well.
	PerUserCache
)

// Request describes a single upstream GET.
type Request struct {
	Service string
	URL     string
	Cache   CachePolicy
	// NoRetry makes a single attempt regardless of the retry policy.
	NoRetry bool
}

type Options struct {
	Name     string
	Timeout  time.Duration
	Retry    RetryConfig
	Tokens   TokenSource
	Cache    repository.ResponseCache
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Client is the authenticated HTTP client used for every platform API call.
// Response bodies are normalized to camelCase keys before they are decoded or
// cached.
type Client struct {
	http     *fasthttp.Client
	timeout  time.Duration
	retry    RetryConfig
	tokens   TokenSource
	cache    repository.ResponseCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 4 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tokens == nil {
		opts.Tokens = StaticToken("")
	}
	if opts.Name == "" {
		opts.Name = "learner-portal"
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                opts.Name,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: 90 * time.Second,
		},
		timeout:  opts.Timeout,
		retry:    opts.Retry.normalized(),
		tokens:   opts.Tokens,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

// GetJSON fetches req.URL as the current learner and decodes the normalized
// body into out.
func (c *Client) GetJSON(ctx context.Context, req Request, out any) error {
	token, err := c.tokens(ctx)
	if err != nil {
		return err
	}
	logger := appLogger.WithRequestID(ctx, c.logger).With(zap.String("service", req.Service))

	cacheKey := c.cacheKey(req, token)
	if cacheKey != "" {
		body, hit, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			logger.Warn("response cache lookup failed", zap.Error(err))
		}
		c.metrics.CacheLookup(req.Service, hit)
		if hit {
			return decode(req.URL, body, out)
		}
	}

	started := c.now()
	raw, err := c.fetch(ctx, req, token)
	if err != nil {
		c.metrics.ObserveUpstream(req.Service, "error", c.now().Sub(started))
		logger.Debug("upstream request failed", zap.String("url", req.URL), zap.Error(err))
		return err
	}
	c.metrics.ObserveUpstream(req.Service, "ok", c.now().Sub(started))

	body, err := casing.Normalize(raw)
	if err != nil {
		return &PayloadError{URL: req.URL, Err: err}
	}

	if cacheKey != "" {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			logger.Warn("response cache store failed", zap.Error(err))
		}
	}
	return decode(req.URL, body, out)
}

func (c *Client) cacheKey(req Request, token string) string {
	if c.cache == nil || c.cacheTTL <= 0 {
		return ""
	}
	switch req.Cache {
	case SharedCache:
		return req.URL
	case PerUserCache:
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:8]) + "|" + req.URL
	default:
		return ""
	}
}

// fetch performs the GET with retries and returns the raw 2xx body.
func (c *Client) fetch(ctx context.Context, req Request, token string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := req.URL
	retries := uint64(c.retry.MaxAttempts - 1)
	if req.NoRetry {
		retries = 0
	}

	schedule := c.retry.newBackOff()
	var body []byte
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		status, raw, retryAfter, err := c.do(ctx, url, token)
		switch {
		case err != nil:
			wrapped := fmt.Errorf("GET %s: %w", url, err)
			if !retryableNetErr(err) {
				return backoff.Permanent(wrapped)
			}
			return wrapped
		case status >= 200 && status < 300:
			body = raw
			return nil
		default:
			sErr := &StatusError{Method: fasthttp.MethodGet, URL: url, StatusCode: status, Body: raw}
			if !c.retry.retryableStatus(status) {
				return backoff.Permanent(sErr)
			}
			schedule.hint = retryAfter
			return sErr
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(schedule, retries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, url, token string) (int, []byte, time.Duration, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	if reqID := appLogger.RequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	deadline := c.now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, 0, err
	}

	body := append([]byte(nil), resp.Body()...)
	retryAfter := parseRetryAfter(string(resp.Header.Peek(fasthttp.HeaderRetryAfter)), c.now())
	return resp.StatusCode(), body, retryAfter, nil
}

func decode(url string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &PayloadError{URL: url, Err: err}
	}
	return nil
}
