// Where: internal/manifest/behaviors.go
// What: Request and response behavior registries.
// Why: Map declared behavior verbs to platform behaviors per rule phase.
package manifest

import (
	"fmt"
	"slices"
)

// Output is what a behavior transform contributes to a rule. Caches holds
// cache settings declared inline by the behavior.
type Output struct {
	Behaviors []Behavior
	Caches    []CacheSetting
}

// Transform converts one declared behavior value.
type Transform func(value any, refs References) (Output, error)

// Registry is an immutable ordered verb table for one phase.
type Registry struct {
	phase      Phase
	verbs      []string
	transforms map[string]Transform
}

var requestVerbs = []string{
	"setOrigin",
	"rewrite",
	"deliver",
	"setCookie",
	"setHeaders",
	"setCache",
	"forwardCookies",
	"runFunction",
	"enableGZIP",
	"bypassCache",
	"httpToHttps",
	"redirectTo301",
	"redirectTo302",
	"capture",
}

var responseVerbs = []string{
	"setCookie",
	"setHeaders",
	"enableGZIP",
	"filterCookie",
	"filterHeader",
	"runFunction",
	"redirectTo301",
	"redirectTo302",
	"capture",
}

// RequestBehaviors returns the request-phase registry.
func RequestBehaviors() *Registry {
	return buildRegistry(PhaseRequest, requestVerbs, baseBehaviors(PhaseRequest), map[string]Transform{
		"setOrigin":      setOrigin,
		"rewrite":        passthrough("rewrite_request"),
		"deliver":        constant("deliver", nil),
		"setCache":       setCache,
		"forwardCookies": flag("forward_cookies", nil),
		"bypassCache":    flag("bypass_cache_phase", nil),
		"httpToHttps":    flag("redirect_http_to_https", nil),
	})
}

// ResponseBehaviors returns the response-phase registry.
func ResponseBehaviors() *Registry {
	return buildRegistry(PhaseResponse, responseVerbs, baseBehaviors(PhaseResponse), map[string]Transform{
		"filterCookie": passthrough("filter_response_cookie"),
		"filterHeader": passthrough("filter_response_header"),
	})
}

// baseBehaviors holds verbs shared by both phases. Cookie and header verbs
// emit phase-specific behavior names.
func baseBehaviors(phase Phase) map[string]Transform {
	cookie, header := "add_request_cookie", "add_request_header"
	if phase == PhaseResponse {
		cookie, header = "set_cookie", "add_response_header"
	}
	return map[string]Transform{
		"setCookie":     passthrough(cookie),
		"setHeaders":    headers(header),
		"enableGZIP":    flag("enable_gzip", ""),
		"runFunction":   runFunction,
		"redirectTo301": passthrough("redirect_to_301"),
		"redirectTo302": passthrough("redirect_to_302"),
		"capture":       capture,
	}
}

func buildRegistry(phase Phase, verbs []string, sets ...map[string]Transform) *Registry {
	transforms := make(map[string]Transform, len(verbs))
	for _, verb := range verbs {
		for _, set := range sets {
			if fn, ok := set[verb]; ok {
				transforms[verb] = fn
			}
		}
		if transforms[verb] == nil {
			panic(fmt.Sprintf("manifest: no transform for %s verb %q", phase, verb))
		}
	}
	return &Registry{phase: phase, verbs: slices.Clone(verbs), transforms: transforms}
}

// With returns a copy of r with verb registered. An existing verb keeps its
// position; a new verb is appended.
func (r *Registry) With(verb string, fn Transform) *Registry {
	next := &Registry{
		phase:      r.phase,
		verbs:      slices.Clone(r.verbs),
		transforms: make(map[string]Transform, len(r.transforms)+1),
	}
	for k, v := range r.transforms {
		next.transforms[k] = v
	}
	if _, exists := next.transforms[verb]; !exists {
		next.verbs = append(next.verbs, verb)
	}
	next.transforms[verb] = fn
	return next
}

// Lookup returns the transform registered for verb.
func (r *Registry) Lookup(verb string) (Transform, bool) {
	fn, ok := r.transforms[verb]
	return fn, ok
}

// Verbs lists the registered verbs in registry order.
func (r *Registry) Verbs() []string {
	return slices.Clone(r.verbs)
}

func (r *Registry) Phase() Phase {
	return r.phase
}

func single(name string, target any) Output {
	return Output{Behaviors: []Behavior{{Name: name, Target: target}}}
}

func passthrough(name string) Transform {
	return func(value any, _ References) (Output, error) {
		return single(name, value), nil
	}
}

func constant(name string, target any) Transform {
	return func(any, References) (Output, error) {
		return single(name, target), nil
	}
}

// flag emits the behavior only when the declared value is truthy.
func flag(name string, target any) Transform {
	return func(value any, _ References) (Output, error) {
		if !truthy(value) {
			return Output{}, nil
		}
		return single(name, target), nil
	}
}

func headers(name string) Transform {
	return func(value any, _ References) (Output, error) {
		var items []string
		switch v := value.(type) {
		case nil:
			return Output{}, nil
		case string:
			items = []string{v}
		case []string:
			items = v
		case []any:
			for _, item := range v {
				header, ok := item.(string)
				if !ok {
					return Output{}, NewError(KindInvalidBehaviorValue, "", value,
						"Each item in 'setHeaders' must be a string, got %T", item)
				}
				items = append(items, header)
			}
		default:
			return Output{}, NewError(KindInvalidBehaviorValue, "", value,
				"The 'setHeaders' field must be a string or an array of strings, got %T", value)
		}
		out := Output{Behaviors: make([]Behavior, 0, len(items))}
		for _, header := range items {
			out.Behaviors = append(out.Behaviors, Behavior{Name: name, Target: header})
		}
		return out, nil
	}
}

func runFunction(value any, _ References) (Output, error) {
	target := value
	if fields, ok := value.(map[string]any); ok {
		if t, exists := fields["target"]; exists {
			target = t
		} else {
			target = fields["path"]
		}
	}
	path, ok := target.(string)
	if !ok {
		return Output{}, NewError(KindInvalidRunFunctionTarget, "", target,
			"Invalid target for runFunction: expected a string, got %T", target)
	}
	return single("run_function", path), nil
}

func capture(value any, _ References) (Output, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Output{}, NewError(KindInvalidBehaviorValue, "", value,
			"The 'capture' behavior must be an object with match and captured")
	}
	subject := "uri"
	if s, ok := fields["subject"].(string); ok && s != "" {
		subject = s
	}
	return single("capture_match_groups", map[string]any{
		"regex":          fields["match"],
		"captured_array": fields["captured"],
		"subject":        "${" + subject + "}",
	}), nil
}

func setOrigin(value any, refs References) (Output, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Output{}, NewError(KindInvalidBehaviorValue, "", value,
			"The 'setOrigin' behavior must be an object with name and type")
	}
	kind, _ := fields["type"].(string)
	if kind == "" {
		return Output{}, NewError(KindMissingField, "", value,
			`The "type" property is mandatory within "setOrigin".`)
	}
	name, _ := fields["name"].(string)
	if name == "" {
		if kind != OriginObjectStorage {
			return Output{}, NewError(KindUnknownOriginReference, "", value,
				"Rule setOrigin without a name is only supported for '%s' origins, got '%s'", OriginObjectStorage, kind)
		}
		bucket, _ := fields["bucket"].(string)
		prefix, _ := fields["prefix"].(string)
		return single("set_origin", map[string]any{
			"origin_type": kind,
			"bucket":      bucket,
			"prefix":      stringOr(prefix, "/"),
		}), nil
	}

	origin, found := refs.Origin(name, kind)
	if !found {
		named := refs.OriginsNamed(name)
		if len(named) == 0 {
			return Output{}, NewError(KindUnknownOriginReference, "", name,
				"Rule setOrigin name '%s' not found in the origin settings", name)
		}
		return Output{}, NewError(KindOriginTypeMismatch, "", kind,
			"Rule setOrigin originType '%s' does not match the origin settings ('%s' is '%s')", kind, name, named[0].OriginType)
	}
	return single("set_origin", origin.Name), nil
}

// setCache references a cache by name. The string form is not checked
// against declared caches.
func setCache(value any, _ References) (Output, error) {
	switch v := value.(type) {
	case nil:
		return Output{}, nil
	case string:
		return single("set_cache_policy", v), nil
	case map[string]any:
		name, _ := v["name"].(string)
		if name == "" {
			return Output{}, NewError(KindMissingField, "", value,
				`The "name" property is mandatory within "setCache".`)
		}
		out := single("set_cache_policy", name)
		out.Caches = []CacheSetting{inlineCache(v)}
		return out, nil
	default:
		return Output{}, NewError(KindInvalidBehaviorValue, "", value,
			"The 'setCache' behavior must be a cache name or an object, got %T", value)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
