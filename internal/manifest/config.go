// Where: internal/manifest/config.go
// What: Input configuration model for the manifest compiler.
// Why: Give the loader one typed target that keeps behavior declaration order.
package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Origin types.
const (
	OriginSingle        = "single_origin"
	OriginObjectStorage = "object_storage"
	OriginLoadBalancer  = "load_balancer"
	OriginLiveIngest    = "live_ingest"
)

// Config is the framework-agnostic project configuration.
type Config struct {
	Origin      []Origin      `yaml:"origin,omitempty"`
	Cache       []Cache       `yaml:"cache,omitempty"`
	Rules       Rules         `yaml:"rules,omitempty"`
	Domain      *Domain       `yaml:"domain,omitempty"`
	Purge       []Purge       `yaml:"purge,omitempty"`
	NetworkList []NetworkList `yaml:"networkList,omitempty"`
}

type Origin struct {
	Name                string    `yaml:"name"`
	Type                string    `yaml:"type"`
	Bucket              string    `yaml:"bucket,omitempty"`
	Prefix              string    `yaml:"prefix,omitempty"`
	Addresses           []Address `yaml:"addresses,omitempty"`
	Path                string    `yaml:"path,omitempty"`
	ProtocolPolicy      string    `yaml:"protocolPolicy,omitempty"`
	Method              string    `yaml:"method,omitempty"`
	Redirection         *bool     `yaml:"redirection,omitempty"`
	ConnectionTimeout   *int      `yaml:"connectionTimeout,omitempty"`
	TimeoutBetweenBytes *int      `yaml:"timeoutBetweenBytes,omitempty"`
	HostHeader          string    `yaml:"hostHeader,omitempty"`
	HMAC                *HMAC     `yaml:"hmac,omitempty"`
}

// Address accepts either a bare string or {address, weight}.
type Address struct {
	Address string `yaml:"address"`
	Weight  *int   `yaml:"weight,omitempty"`
}

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.Weight = nil
		return node.Decode(&a.Address)
	}
	type plain Address
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*a = Address(decoded)
	return nil
}

func (a Address) MarshalYAML() (any, error) {
	if a.Weight == nil {
		return a.Address, nil
	}
	type plain Address
	return plain(a), nil
}

type HMAC struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

type Cache struct {
	Name               string        `yaml:"name"`
	Stale              *bool         `yaml:"stale,omitempty"`
	QueryStringSort    bool          `yaml:"queryStringSort,omitempty"`
	Methods            *CacheMethods `yaml:"methods,omitempty"`
	Browser            *CacheTTL     `yaml:"browser,omitempty"`
	Edge               *CacheTTL     `yaml:"edge,omitempty"`
	CacheByQueryString *CacheBy      `yaml:"cacheByQueryString,omitempty"`
	CacheByCookie      *CacheBy      `yaml:"cacheByCookie,omitempty"`
}

type CacheMethods struct {
	Post    bool `yaml:"post,omitempty"`
	Options bool `yaml:"options,omitempty"`
}

// CacheTTL holds a number or an arithmetic expression string.
type CacheTTL struct {
	MaxAgeSeconds any `yaml:"maxAgeSeconds"`
}

type CacheBy struct {
	Option string   `yaml:"option"`
	List   []string `yaml:"list,omitempty"`
}

type Rules struct {
	Request  []RuleSpec `yaml:"request,omitempty"`
	Response []RuleSpec `yaml:"response,omitempty"`
}

// RuleSpec is a declared rule; Rule is its compiled form.
type RuleSpec struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Active      *bool     `yaml:"active,omitempty"`
	Variable    string    `yaml:"variable,omitempty"`
	Match       string    `yaml:"match"`
	Behavior    Behaviors `yaml:"behavior,omitempty"`
}

// BehaviorEntry is one declared (verb, value) pair.
type BehaviorEntry struct {
	Verb  string
	Value any
}

// Behaviors keeps verbs in the order they were written.
type Behaviors []BehaviorEntry

func (b *Behaviors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*b = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: behavior must be a mapping", node.Line)
	}
	out := make(Behaviors, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var verb string
		if err := node.Content[i].Decode(&verb); err != nil {
			return err
		}
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		out = out.Set(verb, value)
	}
	*b = out
	return nil
}

func (b Behaviors) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range b {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Verb}
		value := &yaml.Node{}
		if err := value.Encode(entry.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// Set replaces an existing verb in place or appends a new one.
func (b Behaviors) Set(verb string, value any) Behaviors {
	for i := range b {
		if b[i].Verb == verb {
			b[i].Value = value
			return b
		}
	}
	return append(b, BehaviorEntry{Verb: verb, Value: value})
}

// Get returns the value declared for verb.
func (b Behaviors) Get(verb string) (any, bool) {
	for _, entry := range b {
		if entry.Verb == verb {
			return entry.Value, true
		}
	}
	return nil, false
}

type Domain struct {
	Name                 string   `yaml:"name"`
	CnameAccessOnly      bool     `yaml:"cnameAccessOnly,omitempty"`
	Cnames               []string `yaml:"cnames,omitempty"`
	DigitalCertificateID any      `yaml:"digitalCertificateId,omitempty"`
	EdgeApplicationID    *int64   `yaml:"edgeApplicationId,omitempty"`
	EdgeFirewallID       *int64   `yaml:"edgeFirewallId,omitempty"`
	Mtls                 *Mtls    `yaml:"mtls,omitempty"`
}

type Mtls struct {
	Verification           string  `yaml:"verification"`
	TrustedCACertificateID *int64  `yaml:"trustedCaCertificateId,omitempty"`
	CRLList                []int64 `yaml:"crlList,omitempty"`
}

// Purge types.
const (
	PurgeURL      = "url"
	PurgeWildcard = "wildcard"
	PurgeCacheKey = "cachekey"
)

type Purge struct {
	Type   string   `yaml:"type"`
	URLs   []string `yaml:"urls"`
	Method string   `yaml:"method,omitempty"`
	Layer  string   `yaml:"layer,omitempty"`
}

// NetworkList is copied to the manifest unchanged.
type NetworkList struct {
	ID          int64    `yaml:"id" json:"id"`
	ListType    string   `yaml:"listType" json:"listType"`
	ListContent []string `yaml:"listContent" json:"listContent"`
}
