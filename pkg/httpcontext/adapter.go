package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/learner-portal/domain"
	appLogger "github.com/fastygo/learner-portal/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyUserID     Key = "user_id"

	keyBearerToken Key = "bearer_token"
)

// HeaderUserID carries the authenticated learner id from the auth middleware
// to the handlers.
const HeaderUserID = "X-User-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches
// it with request metadata and the learner's bearer token, which upstream
// calls are made with.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if userID := string(ctx.Request.Header.Peek(HeaderUserID)); userID != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserID, userID)
	}
	if token := ExtractToken(ctx); token != "" {
		stdCtx = ContextWithBearerToken(stdCtx, token)
	}

	return stdCtx, cancel
}

// RequestID returns the caller-supplied X-Request-ID or a fresh one. The
// generated value is remembered on the request so every caller sees the same id.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	id := uuid.NewString()
	ctx.Request.Header.Set("X-Request-ID", id)
	return id
}

// ExtractToken reads the bearer token from the Authorization header.
func ExtractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	if header == "" {
		return ""
	}
	for _, scheme := range []string{"Bearer ", "JWT "} {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return header
}

// ContextWithBearerToken stores the learner's token for upstream calls.
func ContextWithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyBearerToken, token)
}

// BearerToken returns the learner's token stored by Attach. Its signature
// matches upstream.TokenSource.
func BearerToken(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", domain.ErrMissingBearerToken
	}
	token, _ := ctx.Value(keyBearerToken).(string)
	if token == "" {
		return "", domain.ErrMissingBearerToken
	}
	return token, nil
}

// UserID returns the authenticated learner id, if any.
func UserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(KeyUserID).(string)
	return id
}
