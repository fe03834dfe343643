package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/foodeat/internal/infra/config"
)

func TestTokenBucketLimiter_RefillsOverTime(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTokenBucketLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	require.True(t, limiter.allow("viewer:a"))
	require.True(t, limiter.allow("viewer:a"))
	require.False(t, limiter.allow("viewer:a"))
	require.True(t, limiter.allow("viewer:b"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("viewer:a"))
	require.False(t, limiter.allow("viewer:a"))
}

func TestTokenBucketLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTokenBucketLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}, func() time.Time { return now })

	require.True(t, limiter.allow("ip:1"))
	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("ip:2"))
	require.Len(t, limiter.buckets, 1)
}

func TestResolveOrigin(t *testing.T) {
	cases := []struct {
		name    string
		origin  string
		allowed []string
		want    string
	}{
		{name: "no allow list", origin: "http://a.test", want: "*"},
		{name: "wildcard", origin: "http://a.test", allowed: []string{"*"}, want: "*"},
		{name: "match", origin: "http://b.test", allowed: []string{"http://a.test", "http://b.test"}, want: "http://b.test"},
		{name: "no match", origin: "http://evil.test", allowed: []string{"http://a.test"}, want: "http://a.test"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, resolveOrigin(tc.origin, tc.allowed))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware([]string{"http://localhost:3000"}))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDeviceFromRequest(t *testing.T) {
	cases := []struct {
		name   string
		ua     string
		hint   string
		mobile bool
	}{
		{name: "desktop", ua: "Mozilla/5.0 (X11; Linux x86_64)", mobile: false},
		{name: "android", ua: "Mozilla/5.0 (Linux; Android 14)", mobile: true},
		{name: "opera mini", ua: "Opera Mini/36.2", mobile: true},
		{name: "hint wins", ua: "Mozilla/5.0 (X11; Linux x86_64)", hint: "?1", mobile: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("User-Agent", tc.ua)
			if tc.hint != "" {
				req.Header.Set("Sec-CH-UA-Mobile", tc.hint)
			}
			require.Equal(t, tc.mobile, deviceFromRequest(req).Mobile)
		})
	}
}
