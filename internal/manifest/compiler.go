// Where: internal/manifest/compiler.go
// What: Orchestrates the section strategies into one manifest.
// Why: Fix the strategy order and merge inline caches explicitly.
package manifest

import (
	"github.com/rs/zerolog"
)

// Result is a compiled manifest plus non-fatal diagnostics.
type Result struct {
	Manifest Manifest
	Warnings []Warning
}

// Options configures a Compiler. Zero values select the defaults.
type Options struct {
	RequestBehaviors  *Registry
	ResponseBehaviors *Registry
	Logger            *zerolog.Logger
}

// Compiler is stateless and safe for concurrent use.
type Compiler struct {
	origin Strategy[[]OriginSetting]
	cache  Strategy[[]CacheSetting]
	domain Strategy[DomainSetting]
	purge  Strategy[[]PurgeSetting]
	rules  Strategy[RuleSet]
	logger zerolog.Logger
}

// NewCompiler builds a Compiler with the default strategies.
func NewCompiler(opts Options) *Compiler {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Compiler{
		origin: OriginStrategy{},
		cache:  CacheStrategy{},
		domain: DomainStrategy{},
		purge:  PurgeStrategy{},
		rules: RulesStrategy{
			Request:  opts.RequestBehaviors,
			Response: opts.ResponseBehaviors,
		},
		logger: logger,
	}
}

// Compile runs Compiler with default options.
func Compile(cfg Config) (Result, error) {
	return NewCompiler(Options{}).Compile(cfg)
}

// Compile produces the manifest. Any strategy error aborts the whole compile.
func (c *Compiler) Compile(cfg Config) (Result, error) {
	origins, err := c.origin.Generate(cfg, References{})
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug().Int("origins", len(origins)).Msg("origin section compiled")

	caches, err := c.cache.Generate(cfg, References{})
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug().Int("caches", len(caches)).Msg("cache section compiled")

	domain, err := c.domain.Generate(cfg, References{})
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug().Bool("configured", domain.Configured()).Msg("domain section compiled")

	purges, err := c.purge.Generate(cfg, References{})
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug().Int("purges", len(purges)).Msg("purge section compiled")

	refs := NewReferences(origins)
	ruleSet, err := c.rules.Generate(cfg, refs)
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug().
		Int("rules", len(ruleSet.Rules)).
		Int("inline_caches", len(ruleSet.InlineCaches)).
		Int("warnings", len(ruleSet.Warnings)).
		Msg("rules section compiled")

	cacheSettings := make([]CacheSetting, 0, len(caches)+len(ruleSet.InlineCaches))
	cacheSettings = append(cacheSettings, caches...)
	cacheSettings = append(cacheSettings, ruleSet.InlineCaches...)

	networkLists := make([]NetworkList, 0, len(cfg.NetworkList))
	networkLists = append(networkLists, cfg.NetworkList...)

	return Result{
		Manifest: Manifest{
			Origin:        origins,
			CacheSettings: cacheSettings,
			Rules:         ruleSet.Rules,
			Domain:        domain,
			Purge:         purges,
			NetworkList:   networkLists,
		},
		Warnings: ruleSet.Warnings,
	}, nil
}
