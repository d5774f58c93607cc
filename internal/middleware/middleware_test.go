package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/postboard/internal/config"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func guarded(secret string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/admin", OperatorAuth(secret), RequireRole(secret != "", "ADMIN"))
	g.GET("/users", func(c echo.Context) error { return c.String(http.StatusOK, principal(c)) })
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOperatorGuard(t *testing.T) {
	const secret = "s3cret"
	exp := time.Now().Add(time.Hour).Unix()
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, "other", jwt.MapClaims{"sub": "x", "role": "ADMIN", "exp": exp}), http.StatusUnauthorized},
		{"no expiry", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "x", "role": "ADMIN"}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "x", "role": "ADMIN", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"wrong role", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "x", "role": "USER", "exp": exp}), http.StatusForbidden},
		{"admin", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "op-1", "role": "ADMIN", "exp": exp}), http.StatusOK},
	}
	e := guarded(secret)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "op-1", rec.Body.String())
			}
		})
	}
}

func TestOperatorGuardDisabledWithoutSecret(t *testing.T) {
	rec := serve(guarded(""), httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anon", rec.Body.String())
}

func TestCacheKeyUsesConcretePath(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "pb:cache", KeyStrategy: "route_query"}
	e := echo.New()
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/posts/:postId")
		return cacheKey(cfg, c, 0)
	}
	a, b := key("/api/posts/a"), key("/api/posts/b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, key("/api/posts/a"))
	assert.NotEqual(t, a, key("/api/posts/a?x=1"))
	assert.True(t, strings.HasPrefix(a, "pb:cache:g0:"))

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/posts/a", nil), httptest.NewRecorder())
	assert.NotEqual(t, a, cacheKey(cfg, c, 1))
}

func TestEntryCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodeEntry(http.StatusOK, hdr, []byte(`[{"id":"p1"}]`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodeEntry(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `[{"id":"p1"}]`, string(body))

	_, _, _, ok = decodeEntry([]byte{0, 0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodeEntry([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestBodyRecorderTruncation(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), limit: 4}
	_, _ = rec.Write([]byte("abc"))
	assert.False(t, rec.truncated())
	_, _ = rec.Write([]byte("def"))
	assert.True(t, rec.truncated())
	assert.Equal(t, "abcd", rec.buf.String())
}

func TestRedisMiddlewaresPassThroughWithoutClient(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.Use(NewCachePurger(config.CacheConfig{Enabled: true, PurgeOnWrite: true}, nil))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	e.GET("/api/posts", func(c echo.Context) error { return c.JSON(http.StatusOK, []string{}) })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/posts")

	assert.Equal(t, "rl:ip:10.0.0.1:route:GET /api/posts", rateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	assert.Equal(t, "rl:user:anon", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
	c.Set(ctxSubject, "op-1")
	assert.Equal(t, "rl:ip:10.0.0.1:user:op-1", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user"}, c))
}

func TestMetricsCountsByRoutePattern(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/api/posts/:postId", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/posts/:postId", "404")
	before := testutil.ToFloat64(counter)
	serve(e, httptest.NewRequest(http.MethodGet, "/api/posts/a", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/api/posts/b", nil))
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		Prefix:       "pb:cache",
		MaxBodyBytes: 1 << 20,
		PurgeOnWrite: true,
	}
}

func TestRedisCacheHitAfterMiss(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/api/posts", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, []string{"p1"})
	})

	first := serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	second := serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestRedisCacheSkipsCredentialedRequests(t *testing.T) {
	mr, rdb := newRedis(t)
	e := echo.New()
	e.Use(NewRedisCache(cacheConfig(), rdb))
	e.GET("/api/posts", func(c echo.Context) error { return c.String(http.StatusOK, "private") })

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer anything")
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, mr.Keys())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

// A read that loaded its data before a write but stores it after the purge
// must not be served afterwards.
func TestRedisCacheIgnoresEntriesStoredAcrossPurge(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := cacheConfig()
	version := "old"
	e := echo.New()
	e.Use(NewCachePurger(cfg, rdb))
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/api/posts", func(c echo.Context) error {
		body := version
		if c.QueryParam("race") == "1" {
			// the write lands while this read is in flight
			version = "new"
			wrec := serve(e, httptest.NewRequest(http.MethodDelete, "/api/posts/p1", nil))
			require.Equal(t, http.StatusNoContent, wrec.Code)
		}
		return c.String(http.StatusOK, body)
	})
	e.DELETE("/api/posts/:postId", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/posts?race=1", nil))
	assert.Equal(t, "old", rec.Body.String())
	gen, err := mr.Get("pb:cache:gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/posts?race=1", nil))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestCachePurgerDropsOlderGenerations(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := cacheConfig()
	e := echo.New()
	e.Use(NewCachePurger(cfg, rdb))
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/api/posts", func(c echo.Context) error { return c.String(http.StatusOK, "list") })
	e.POST("/api/posts", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	e.DELETE("/api/posts/:postId", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })

	serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Len(t, mr.Keys(), 1)

	serve(e, httptest.NewRequest(http.MethodDelete, "/api/posts/x", nil))
	assert.Equal(t, "HIT", serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil)).Header().Get("X-Cache"))

	serve(e, httptest.NewRequest(http.MethodPost, "/api/posts", nil))
	assert.Equal(t, []string{"pb:cache:gen"}, mr.Keys())
	assert.Equal(t, "MISS", serve(e, httptest.NewRequest(http.MethodGet, "/api/posts", nil)).Header().Get("X-Cache"))
}

func TestTokenBucketKeysByGuardedSubject(t *testing.T) {
	mr, rdb := newRedis(t)
	limiter := NewTokenBucket(config.RateLimitConfig{
		Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "user", Prefix: "rl",
	}, rdb)
	e := echo.New()
	g := e.Group("/api/admin", OperatorAuth("s3cret"), RequireRole(true, "ADMIN"), limiter)
	g.GET("/users", func(c echo.Context) error { return c.String(http.StatusOK, principal(c)) })

	get := func(sub string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+sign(t, "s3cret", jwt.MapClaims{
			"sub": sub, "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix(),
		}))
		return serve(e, req).Code
	}
	assert.Equal(t, http.StatusOK, get("op-A"))
	assert.Equal(t, http.StatusOK, get("op-B"))
	assert.Equal(t, http.StatusTooManyRequests, get("op-A"))
	assert.True(t, mr.Exists("rl:user:op-A"))
	assert.True(t, mr.Exists("rl:user:op-B"))
	assert.False(t, mr.Exists("rl:user:anon"))
}
