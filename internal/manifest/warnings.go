// Where: internal/manifest/warnings.go
// What: Non-fatal compile diagnostics.
// Why: Report unknown behavior verbs without writing to stdout from the compiler.
package manifest

import "fmt"

// Warning describes a declaration the compiler skipped.
type Warning struct {
	Phase   Phase
	Rule    string
	Verb    string
	Message string
}

func (w Warning) String() string {
	if w.Rule == "" {
		return w.Message
	}
	return fmt.Sprintf("%s rule %q: %s", w.Phase, w.Rule, w.Message)
}

type warningCollector struct {
	warnings []Warning
}

func (c *warningCollector) unknownBehavior(phase Phase, rule, verb string) {
	if c == nil {
		return
	}
	c.warnings = append(c.warnings, Warning{
		Phase:   phase,
		Rule:    rule,
		Verb:    verb,
		Message: fmt.Sprintf("Unknown behavior: %s", verb),
	})
}

func (c *warningCollector) list() []Warning {
	if c == nil || len(c.warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}
