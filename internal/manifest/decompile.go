// Where: internal/manifest/decompile.go
// What: Reverse mapping from a manifest back to a configuration.
// Why: Let projects adopt the config format starting from an existing manifest.json.
package manifest

import (
	"math"
	"sort"
	"strings"
)

// behaviorVerbs maps platform behavior names back to configuration verbs.
var behaviorVerbs = map[string]string{
	"set_origin":             "setOrigin",
	"rewrite_request":        "rewrite",
	"deliver":                "deliver",
	"add_request_cookie":     "setCookie",
	"set_cookie":             "setCookie",
	"add_request_header":     "setHeaders",
	"add_response_header":    "setHeaders",
	"set_cache_policy":       "setCache",
	"forward_cookies":        "forwardCookies",
	"run_function":           "runFunction",
	"enable_gzip":            "enableGZIP",
	"bypass_cache_phase":     "bypassCache",
	"redirect_http_to_https": "httpToHttps",
	"redirect_to_301":        "redirectTo301",
	"redirect_to_302":        "redirectTo302",
	"capture_match_groups":   "capture",
	"filter_response_cookie": "filterCookie",
	"filter_response_header": "filterHeader",
}

// Decompile rebuilds a configuration that compiles back to m. Behaviors it
// cannot map are reported as warnings and skipped.
func Decompile(m Manifest) (Config, []Warning) {
	warnings := &warningCollector{}
	cfg := Config{}

	for _, origin := range m.Origin {
		cfg.Origin = append(cfg.Origin, decompileOrigin(origin))
	}

	inline := map[string][]CacheSetting{}
	for _, cache := range m.CacheSettings {
		if cache.IsInline() {
			inline[cache.Name] = append(inline[cache.Name], cache)
			continue
		}
		cfg.Cache = append(cfg.Cache, decompileCache(cache))
	}

	origins := NewReferences(m.Origin)
	rules := append([]Rule{}, m.Rules...)
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Phase != rules[j].Phase {
			return rules[i].Phase == PhaseRequest
		}
		return rules[i].Order < rules[j].Order
	})
	for _, rule := range rules {
		spec := decompileRule(rule, origins, inline, warnings)
		if rule.Phase == PhaseResponse {
			cfg.Rules.Response = append(cfg.Rules.Response, spec)
		} else {
			cfg.Rules.Request = append(cfg.Rules.Request, spec)
		}
	}

	if m.Domain.Configured() {
		cfg.Domain = decompileDomain(m.Domain)
	}

	for _, purge := range m.Purge {
		entry := Purge{
			Type: purge.Type,
			URLs: append([]string{}, purge.URLs...),
		}
		if purge.Method != defaultPurgeMethod {
			entry.Method = purge.Method
		}
		if purge.Type == PurgeCacheKey && purge.Layer != defaultPurgeLayer {
			entry.Layer = purge.Layer
		}
		cfg.Purge = append(cfg.Purge, entry)
	}

	cfg.NetworkList = append(cfg.NetworkList, m.NetworkList...)
	return cfg, warnings.list()
}

func decompileOrigin(origin OriginSetting) Origin {
	out := Origin{Name: origin.Name, Type: origin.OriginType}
	if origin.OriginType == OriginObjectStorage {
		out.Bucket = deref(origin.Bucket)
		out.Prefix = deref(origin.Prefix)
		return out
	}
	for _, address := range origin.Addresses {
		entry := Address{Address: address.Address}
		if address.Weight != nil {
			entry.Weight = ptr(*address.Weight)
		}
		out.Addresses = append(out.Addresses, entry)
	}
	out.Path = deref(origin.OriginPath)
	if origin.OriginProtocolPolicy != defaultProtocolPolicy {
		out.ProtocolPolicy = origin.OriginProtocolPolicy
	}
	if origin.Method != defaultBalanceMethod {
		out.Method = origin.Method
	}
	if origin.IsOriginRedirectionEnabled != nil && *origin.IsOriginRedirectionEnabled {
		out.Redirection = ptr(true)
	}
	if origin.ConnectionTimeout != nil && *origin.ConnectionTimeout != defaultConnectionTimeout {
		out.ConnectionTimeout = ptr(*origin.ConnectionTimeout)
	}
	if origin.TimeoutBetweenBytes != nil && *origin.TimeoutBetweenBytes != defaultTimeoutBetweenBytes {
		out.TimeoutBetweenBytes = ptr(*origin.TimeoutBetweenBytes)
	}
	if origin.HostHeader != defaultHostHeader {
		out.HostHeader = origin.HostHeader
	}
	if origin.HMACAuthentication != nil && *origin.HMACAuthentication {
		out.HMAC = &HMAC{
			Region:    origin.HMACRegionName,
			AccessKey: origin.HMACAccessKey,
			SecretKey: origin.HMACSecretKey,
		}
	}
	return out
}

func decompileCache(cache CacheSetting) Cache {
	out := Cache{
		Name:            cache.Name,
		QueryStringSort: cache.EnableQueryStringSort,
	}
	if cache.BrowserCacheSettings == cacheOverride {
		out.Browser = &CacheTTL{MaxAgeSeconds: ttlValue(cache.BrowserCacheSettingsMaximumTTL)}
	}
	if cache.CDNCacheSettings == cacheOverride {
		out.Edge = &CacheTTL{MaxAgeSeconds: ttlValue(cache.CDNCacheSettingsMaximumTTL)}
	}
	if cache.EnableCachingForPost || cache.EnableCachingForOptions {
		out.Methods = &CacheMethods{
			Post:    cache.EnableCachingForPost,
			Options: cache.EnableCachingForOptions,
		}
	}
	if cache.CacheByQueryString != "" {
		out.CacheByQueryString = decompileCacheBy(cache.CacheByQueryString, cache.QueryStringFields)
	}
	if cache.CacheByCookie != "" {
		out.CacheByCookie = decompileCacheBy(cache.CacheByCookie, cache.CookieNames)
	}
	return out
}

func decompileCacheBy(option string, list []string) *CacheBy {
	switch option {
	case "all":
		return &CacheBy{Option: "varies"}
	case "whitelist", "blacklist":
		return &CacheBy{Option: option, List: append([]string{}, list...)}
	default:
		return &CacheBy{Option: option}
	}
}

func decompileRule(
	rule Rule,
	origins References,
	inline map[string][]CacheSetting,
	warnings *warningCollector,
) RuleSpec {
	spec := RuleSpec{
		Name:        rule.Name,
		Description: rule.Description,
	}
	if !rule.IsActive {
		spec.Active = ptr(false)
	}
	if len(rule.Criteria) > 0 && len(rule.Criteria[0]) > 0 {
		criterion := rule.Criteria[0][0]
		if variable := unwrapVariable(criterion.Variable); variable != defaultCriteriaVariable {
			spec.Variable = variable
		}
		spec.Match = criterion.InputValue
	}

	for _, behavior := range rule.Behaviors {
		verb, ok := behaviorVerbs[behavior.Name]
		if !ok {
			warnings.unknownBehavior(rule.Phase, rule.Name, behavior.Name)
			continue
		}
		switch verb {
		case "setHeaders":
			headers := []any{}
			if existing, ok := spec.Behavior.Get(verb); ok {
				headers, _ = existing.([]any)
			}
			spec.Behavior = spec.Behavior.Set(verb, append(headers, behavior.Target))
		case "setOrigin":
			spec.Behavior = spec.Behavior.Set(verb, decompileSetOrigin(behavior.Target, origins))
		case "setCache":
			spec.Behavior = spec.Behavior.Set(verb, decompileSetCache(behavior.Target, inline))
		case "runFunction":
			spec.Behavior = spec.Behavior.Set(verb, map[string]any{"path": behavior.Target})
		case "capture":
			spec.Behavior = spec.Behavior.Set(verb, decompileCapture(behavior.Target))
		case "deliver", "forwardCookies", "enableGZIP", "bypassCache", "httpToHttps":
			spec.Behavior = spec.Behavior.Set(verb, true)
		default:
			spec.Behavior = spec.Behavior.Set(verb, behavior.Target)
		}
	}
	return spec
}

func decompileSetOrigin(target any, origins References) map[string]any {
	switch v := target.(type) {
	case map[string]any:
		out := map[string]any{"type": v["origin_type"]}
		if bucket, ok := v["bucket"].(string); ok && bucket != "" {
			out["bucket"] = bucket
		}
		if prefix, ok := v["prefix"].(string); ok && prefix != "/" {
			out["prefix"] = prefix
		}
		return out
	case string:
		out := map[string]any{"name": v}
		if named := origins.OriginsNamed(v); len(named) > 0 {
			out["type"] = named[0].OriginType
		}
		return out
	default:
		return map[string]any{"name": target}
	}
}

func decompileSetCache(target any, inline map[string][]CacheSetting) any {
	name, ok := target.(string)
	if !ok {
		return target
	}
	queue := inline[name]
	if len(queue) == 0 {
		return name
	}
	inline[name] = queue[1:]
	return queue[0].Inline
}

func decompileCapture(target any) map[string]any {
	fields, _ := target.(map[string]any)
	out := map[string]any{
		"match":    fields["regex"],
		"captured": fields["captured_array"],
	}
	if subject, ok := fields["subject"].(string); ok {
		if variable := unwrapVariable(subject); variable != defaultCriteriaVariable {
			out["subject"] = variable
		}
	}
	return out
}

func decompileDomain(domain DomainSetting) *Domain {
	out := &Domain{
		Name:                 domain.Name,
		CnameAccessOnly:      domain.CnameAccessOnly,
		Cnames:               append([]string(nil), domain.Cnames...),
		DigitalCertificateID: domain.DigitalCertificateID,
		EdgeApplicationID:    nonZeroID(domain.EdgeApplicationID),
		EdgeFirewallID:       nonZeroID(domain.EdgeFirewallID),
	}
	if domain.IsMtlsEnabled {
		out.Mtls = &Mtls{
			Verification:           domain.MtlsVerification,
			TrustedCACertificateID: nonZeroID(domain.MtlsTrustedCACertificateID),
			CRLList:                append([]int64(nil), domain.CRLList...),
		}
	}
	return out
}

func unwrapVariable(value string) string {
	return strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}")
}

// ttlValue keeps whole-second TTLs as integers so rendered configs read naturally.
func ttlValue(value float64) any {
	if value == math.Trunc(value) && math.Abs(value) < 1<<53 {
		return int64(value)
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
