package httpcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/learner-portal/domain"
	appLogger "github.com/fastygo/learner-portal/pkg/logger"
)

func TestAttachCarriesRequestMetadata(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set("X-Request-ID", "req-1")
	rc.Request.Header.Set(fasthttp.HeaderAuthorization, "Bearer learner-token")
	rc.Request.Header.Set(HeaderUserID, "42")
	rc.Request.Header.SetUserAgent("portal-test")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)

	assert.Equal(t, "req-1", appLogger.RequestID(ctx))
	assert.Equal(t, "req-1", string(rc.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "42", UserID(ctx))
	assert.Equal(t, "portal-test", ctx.Value(KeyUserAgent))

	token, err := BearerToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "learner-token", token)
}

func TestAttachGeneratesStableRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx

	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	id := appLogger.RequestID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, RequestID(&rc))
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"JWT abc.def": "abc.def",
		"raw-token":   "raw-token",
		"":            "",
	}
	for header, want := range cases {
		var rc fasthttp.RequestCtx
		if header != "" {
			rc.Request.Header.Set(fasthttp.HeaderAuthorization, header)
		}
		assert.Equal(t, want, ExtractToken(&rc), header)
	}
}

func TestBearerTokenMissing(t *testing.T) {
	_, err := BearerToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingBearerToken)
}
