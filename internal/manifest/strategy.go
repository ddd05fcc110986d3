// Where: internal/manifest/strategy.go
// What: Common contract for per-section manifest generators.
// Why: Keep each manifest section independently testable and swappable.
package manifest

// Strategy produces one manifest section from the configuration.
type Strategy[T any] interface {
	Generate(cfg Config, refs References) (T, error)
}

// RuleSet is the output of the rules strategy: compiled rules plus cache
// settings declared inline by setCache behaviors.
type RuleSet struct {
	Rules        []Rule
	InlineCaches []CacheSetting
	Warnings     []Warning
}
