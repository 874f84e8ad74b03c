package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/nft-exchange/internal/config"
)

func cacheTestContext(target, routePattern string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(routePattern)
	return c
}

func TestCacheKeyDistinguishesPathParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	// Two listings resolve through the same route pattern
	// /v1/listings/:id; their cached bodies must never share a key.
	a := cacheKeyFrom(cfg, cacheTestContext("/v1/listings/1", "/v1/listings/:id"))
	b := cacheKeyFrom(cfg, cacheTestContext("/v1/listings/2", "/v1/listings/:id"))
	assert.NotEqual(t, a, b)

	// The same request keys identically on repeat visits.
	again := cacheKeyFrom(cfg, cacheTestContext("/v1/listings/1", "/v1/listings/:id"))
	assert.Equal(t, a, again)
}

func TestCacheKeyQueryAndStrategy(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	// The query string participates in the default strategy.
	q1 := cacheKeyFrom(cfg, cacheTestContext("/v1/listings?limit=5", "/v1/listings"))
	q2 := cacheKeyFrom(cfg, cacheTestContext("/v1/listings?limit=10", "/v1/listings"))
	assert.NotEqual(t, q1, q2)

	for _, strategy := range []string{"route", "method_route", "method_route_query", "route_query"} {
		cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: strategy}
		key := cacheKeyFrom(cfg, cacheTestContext("/v1/listings/7", "/v1/listings/:id"))
		assert.True(t, strings.HasPrefix(key, "cache:"), strategy)
	}
}
