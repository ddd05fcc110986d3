// Where: internal/manifest/rules.go
// What: Rules section compilation.
// Why: Turn declared request/response rules into ordered CDN rules.
package manifest

import "fmt"

// Rule orders start at 2; order 1 is reserved for the platform default rule.
const firstRuleOrder = 2

const defaultCriteriaVariable = "uri"

// RulesStrategy compiles rules with one registry per phase. Nil registries
// fall back to RequestBehaviors and ResponseBehaviors.
type RulesStrategy struct {
	Request  *Registry
	Response *Registry
}

func (s RulesStrategy) Generate(cfg Config, refs References) (RuleSet, error) {
	request := s.Request
	if request == nil {
		request = RequestBehaviors()
	}
	response := s.Response
	if response == nil {
		response = ResponseBehaviors()
	}

	warnings := &warningCollector{}
	set := RuleSet{
		Rules:        make([]Rule, 0, len(cfg.Rules.Request)+len(cfg.Rules.Response)),
		InlineCaches: []CacheSetting{},
	}
	if err := compilePhase(cfg.Rules.Request, request, refs, &set, warnings); err != nil {
		return RuleSet{}, err
	}
	if err := compilePhase(cfg.Rules.Response, response, refs, &set, warnings); err != nil {
		return RuleSet{}, err
	}
	set.Warnings = warnings.list()
	return set, nil
}

func compilePhase(
	declared []RuleSpec,
	registry *Registry,
	refs References,
	set *RuleSet,
	warnings *warningCollector,
) error {
	phase := registry.Phase()
	for index, spec := range declared {
		rule := newRule(phase, index, spec)
		for _, entry := range spec.Behavior {
			transform, ok := registry.Lookup(entry.Verb)
			if !ok {
				warnings.unknownBehavior(phase, spec.Name, entry.Verb)
				continue
			}
			out, err := transform(entry.Value, refs)
			if err != nil {
				return withField(err, fmt.Sprintf("rules.%s[%d].behavior.%s", phase, index, entry.Verb))
			}
			rule.Behaviors = append(rule.Behaviors, out.Behaviors...)
			set.InlineCaches = append(set.InlineCaches, out.Caches...)
		}
		set.Rules = append(set.Rules, rule)
	}
	return nil
}

func newRule(phase Phase, index int, spec RuleSpec) Rule {
	active := true
	if spec.Active != nil {
		active = *spec.Active
	}
	return Rule{
		Name:        spec.Name,
		Phase:       phase,
		Description: spec.Description,
		IsActive:    active,
		Order:       index + firstRuleOrder,
		Criteria: [][]Criterion{{{
			Variable:    "${" + stringOr(spec.Variable, defaultCriteriaVariable) + "}",
			Operator:    "matches",
			Conditional: "if",
			InputValue:  spec.Match,
		}}},
		Behaviors: []Behavior{},
	}
}
