package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/learner-portal/pkg/httpcontext"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func serve(t *testing.T, issuer, authorization string) (*fasthttp.RequestCtx, string, bool) {
	t.Helper()
	var (
		rc     fasthttp.RequestCtx
		userID string
		called bool
	)
	rc.Request.Header.Set(httpcontext.HeaderUserID, "spoofed")
	if authorization != "" {
		rc.Request.Header.Set(fasthttp.HeaderAuthorization, authorization)
	}

	next := func(ctx *fasthttp.RequestCtx) {
		called = true
		userID = string(ctx.Request.Header.Peek(httpcontext.HeaderUserID))
	}
	JWTAuth(testSecret, issuer, nil)(next)(&rc)
	return &rc, userID, called
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": float64(3),
		"iss":     "http://localhost:18000/oauth2",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rc, userID, called := serve(t, "http://localhost:18000/oauth2", "JWT "+token)
	require.True(t, called)
	assert.Equal(t, "3", userID)
	assert.Equal(t, fasthttp.StatusOK, rc.Response.StatusCode())
	assert.Equal(t, token, httpcontext.ExtractToken(rc), "the raw token stays available for forwarding")
}

func TestJWTAuthRejects(t *testing.T) {
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"user_id": "3",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	wrongSecret := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": "3"})
	wrongIssuer := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": "3", "iss": "elsewhere"})
	wrongMethod := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"user_id": "3"})

	tests := map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-jwt",
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + wrongSecret,
		"wrong issuer": "Bearer " + wrongIssuer,
		"wrong method": "Bearer " + wrongMethod,
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rc, _, called := serve(t, "issuer", header)
			assert.False(t, called)
			assert.Equal(t, fasthttp.StatusUnauthorized, rc.Response.StatusCode())
		})
	}
}

func TestJWTAuthDropsSpoofedUserID(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"username": "edx"})

	_, userID, called := serve(t, "", "Bearer "+token)
	require.True(t, called)
	assert.Empty(t, userID)
}
