// Where: internal/manifest/cache.go
// What: Cache section normalization.
// Why: Turn TTL expressions and cache-key options into platform cache settings.
package manifest

import (
	"errors"
	"fmt"

	"github.com/poruru/edge-manifest/internal/expr"
)

const (
	cacheOverride = "override"
	cacheHonor    = "honor"

	defaultBrowserTTL = 0
	defaultEdgeTTL    = 60
)

// CacheStrategy normalizes cache policies.
type CacheStrategy struct{}

func (CacheStrategy) Generate(cfg Config, _ References) ([]CacheSetting, error) {
	out := make([]CacheSetting, 0, len(cfg.Cache))
	for i, cache := range cfg.Cache {
		setting, err := normalizeCache(cache, fmt.Sprintf("cache[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	return out, nil
}

func normalizeCache(cache Cache, field string) (CacheSetting, error) {
	browserTTL, err := evaluateTTL(cache.Browser, defaultBrowserTTL, field+".browser.maxAgeSeconds")
	if err != nil {
		return CacheSetting{}, err
	}
	edgeTTL, err := evaluateTTL(cache.Edge, defaultEdgeTTL, field+".edge.maxAgeSeconds")
	if err != nil {
		return CacheSetting{}, err
	}

	setting := CacheSetting{
		Name:                           cache.Name,
		BrowserCacheSettings:           overrideOrHonor(cache.Browser != nil),
		BrowserCacheSettingsMaximumTTL: browserTTL,
		CDNCacheSettings:               overrideOrHonor(cache.Edge != nil),
		CDNCacheSettingsMaximumTTL:     edgeTTL,
		EnableQueryStringSort:          cache.QueryStringSort,
	}
	if cache.Methods != nil {
		setting.EnableCachingForPost = cache.Methods.Post
		setting.EnableCachingForOptions = cache.Methods.Options
	}
	if cache.CacheByQueryString != nil {
		setting.CacheByQueryString, setting.QueryStringFields = cacheKeyOption(*cache.CacheByQueryString)
	}
	if cache.CacheByCookie != nil {
		setting.CacheByCookie, setting.CookieNames = cacheKeyOption(*cache.CacheByCookie)
	}
	return setting, nil
}

func evaluateTTL(ttl *CacheTTL, fallback float64, field string) (float64, error) {
	if ttl == nil {
		return fallback, nil
	}
	value, err := expr.Evaluate(ttl.MaxAgeSeconds)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, expr.ErrDivisionByZero) {
		return 0, NewError(KindInvalidExpression, field, ttl.MaxAgeSeconds,
			"Expression divides by zero: %v", ttl.MaxAgeSeconds)
	}
	return 0, NewError(KindInvalidExpression, field, ttl.MaxAgeSeconds,
		"Expression is not purely mathematical: %v", ttl.MaxAgeSeconds)
}

func overrideOrHonor(present bool) string {
	if present {
		return cacheOverride
	}
	return cacheHonor
}

func cacheKeyOption(by CacheBy) (string, []string) {
	switch by.Option {
	case "varies":
		return "all", []string{}
	case "whitelist", "blacklist":
		return by.Option, append([]string{}, by.List...)
	default:
		return by.Option, []string{}
	}
}
