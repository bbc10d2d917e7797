package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/config"
	"github.com/iliyamo/classroom-seating/internal/utils"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	g := e.Group("/v1", JWTAuth("secret"), RequireRole(utils.RoleTeacher))
	g.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, CurrentUserID(c)) })

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/v1/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/v1/me", "garbage").Code)

	student, err := utils.NewAccessToken("secret", "kid", "STUDENT", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/v1/me", student.Token).Code)

	teacher, err := utils.NewAccessToken("secret", "teacher", utils.RoleTeacher, time.Minute)
	require.NoError(t, err)
	rec := do(e, http.MethodGet, "/v1/me", teacher.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher", rec.Body.String())
}

func TestRedisCache_HitMissAndPurge(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute,
		KeyStrategy: "route_query", Prefix: "cache",
	}
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb, zap.NewNop()))
	e.GET("/grids/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "calls": calls})
	})
	e.POST("/grids/:id/fill", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	first := do(e, http.MethodGet, "/grids/a", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/grids/a", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	other := do(e, http.MethodGet, "/grids/b", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Len(t, mr.Keys(), 2)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/grids/a/fill", "").Code)
	assert.Empty(t, mr.Keys())
	assert.Equal(t, "MISS", do(e, http.MethodGet, "/grids/a", "").Header().Get("X-Cache"))
}

func TestRedisCache_DisabledWithoutClient(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil, zap.NewNop()))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "x") })
	rec := do(e, http.MethodGet, "/x", "")
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestTokenBucket(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "ip_route", Prefix: "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, zap.NewNop()))
	e.POST("/fill", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/fill", "").Code)
	rec := do(e, http.MethodPost, "/fill", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodPost, "/fill", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(rec.Body.String(), "rate limit exceeded"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/grids", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/grids")
	c.Set(ctxUserID, "teacher")

	assert.Equal(t, "rl:ip:10.0.0.1:route:GET /v1/grids", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))
	assert.Equal(t, "rl:user:teacher", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}
