// Where: internal/manifest/purge.go
// What: Purge section normalization.
// Why: Reject purge URLs the platform would refuse before deploying.
package manifest

import (
	"fmt"
	"strings"
)

const (
	defaultPurgeMethod = "delete"
	defaultPurgeLayer  = "edge_caching"
)

// PurgeStrategy normalizes purge directives.
type PurgeStrategy struct{}

func (PurgeStrategy) Generate(cfg Config, _ References) ([]PurgeSetting, error) {
	out := make([]PurgeSetting, 0, len(cfg.Purge))
	for i, purge := range cfg.Purge {
		for j, url := range purge.URLs {
			field := fmt.Sprintf("purge[%d].urls[%d]", i, j)
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return nil, NewError(KindMissingScheme, field, url,
					"The URL %q must contain the protocol (http:// or https://).", url)
			}
			if purge.Type == PurgeWildcard && !strings.Contains(url, "*") {
				return nil, NewError(KindMissingWildcard, field, url,
					"The URL %q must contain the wildcard character (*).", url)
			}
		}

		setting := PurgeSetting{
			Type:   purge.Type,
			URLs:   append([]string{}, purge.URLs...),
			Method: stringOr(purge.Method, defaultPurgeMethod),
		}
		if purge.Type == PurgeCacheKey {
			setting.Layer = stringOr(purge.Layer, defaultPurgeLayer)
		}
		out = append(out, setting)
	}
	return out, nil
}
