// Where: internal/loader/legacy.go
// What: Conversion of rule-level behavior keys into the behavior mapping.
// Why: Older configuration files declared behaviors directly on the rule.
package loader

import (
	"slices"

	"gopkg.in/yaml.v3"
)

var legacyRequestVerbs = []string{
	"httpToHttps", "bypassCache", "forwardCookies", "capture", "setOrigin", "rewrite",
	"setCookie", "setHeaders", "runFunction", "setCache", "redirectTo301", "redirectTo302", "deliver",
}

var legacyResponseVerbs = []string{
	"enableGZIP", "capture", "setCookie", "setHeaders", "filterHeader", "filterCookie",
	"runFunction", "redirectTo301", "redirectTo302", "deliver",
}

func convertLegacyRules(root *yaml.Node) {
	rules := mappingValue(root, "rules")
	if rules == nil || rules.Kind != yaml.MappingNode {
		return
	}
	convertPhase(mappingValue(rules, "request"), legacyRequestVerbs)
	convertPhase(mappingValue(rules, "response"), legacyResponseVerbs)
}

func convertPhase(list *yaml.Node, verbs []string) {
	if list == nil || list.Kind != yaml.SequenceNode {
		return
	}
	for _, rule := range list.Content {
		if rule.Kind == yaml.MappingNode {
			convertRule(rule, verbs)
		}
	}
}

// convertRule moves legacy keys into behavior in the order they appear on
// the rule. A key already present in behavior is overwritten in place.
func convertRule(rule *yaml.Node, verbs []string) {
	var moved []*yaml.Node
	kept := make([]*yaml.Node, 0, len(rule.Content))
	for i := 0; i+1 < len(rule.Content); i += 2 {
		key, value := rule.Content[i], rule.Content[i+1]
		if slices.Contains(verbs, key.Value) {
			moved = append(moved, key, value)
			continue
		}
		kept = append(kept, key, value)
	}
	if len(moved) == 0 {
		return
	}
	rule.Content = kept

	behavior := mappingValue(rule, "behavior")
	if behavior == nil || behavior.Kind != yaml.MappingNode {
		fresh := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if behavior == nil {
			rule.Content = append(rule.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "behavior"}, fresh)
		} else {
			*behavior = *fresh
		}
		behavior = mappingValue(rule, "behavior")
	}
	for i := 0; i+1 < len(moved); i += 2 {
		setMappingValue(behavior, moved[i], moved[i+1])
	}
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(node, key, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key.Value {
			node.Content[i+1] = value
			return
		}
	}
	node.Content = append(node.Content, key, value)
}
