// Where: internal/manifest/types.go
// What: Output manifest model.
// Why: Define the JSON document the platform deploys from.
package manifest

import (
	"encoding/json"
	"maps"
)

// Phase is the request lifecycle stage a rule runs in.
type Phase string

const (
	PhaseRequest  Phase = "request"
	PhaseResponse Phase = "response"
)

// Manifest is the compiled deployment document. Slices are never nil so
// empty sections serialize as [].
type Manifest struct {
	Origin        []OriginSetting `json:"origin"`
	CacheSettings []CacheSetting  `json:"cacheSettings"`
	Rules         []Rule          `json:"rules"`
	Domain        DomainSetting   `json:"domain"`
	Purge         []PurgeSetting  `json:"purge"`
	NetworkList   []NetworkList   `json:"networkList"`
}

type OriginSetting struct {
	Name                       string           `json:"name"`
	OriginType                 string           `json:"origin_type"`
	Bucket                     *string          `json:"bucket,omitempty"`
	Prefix                     *string          `json:"prefix,omitempty"`
	OriginPath                 *string          `json:"origin_path,omitempty"`
	OriginProtocolPolicy       string           `json:"origin_protocol_policy,omitempty"`
	Method                     string           `json:"method,omitempty"`
	IsOriginRedirectionEnabled *bool            `json:"is_origin_redirection_enabled,omitempty"`
	ConnectionTimeout          *int             `json:"connection_timeout,omitempty"`
	TimeoutBetweenBytes        *int             `json:"timeout_between_bytes,omitempty"`
	HostHeader                 string           `json:"host_header,omitempty"`
	Addresses                  []AddressSetting `json:"addresses,omitempty"`
	HMACAuthentication         *bool            `json:"hmac_authentication,omitempty"`
	HMACRegionName             string           `json:"hmac_region_name,omitempty"`
	HMACAccessKey              string           `json:"hmac_access_key,omitempty"`
	HMACSecretKey              string           `json:"hmac_secret_key,omitempty"`
}

type AddressSetting struct {
	Address string `json:"address"`
	Weight  *int   `json:"weight,omitempty"`
}

// CacheSetting is either a normalized cache policy or, when Inline is set,
// an object declared directly in a setCache behavior and emitted verbatim.
type CacheSetting struct {
	Name                           string         `json:"name"`
	BrowserCacheSettings           string         `json:"browser_cache_settings"`
	BrowserCacheSettingsMaximumTTL float64        `json:"browser_cache_settings_maximum_ttl"`
	CDNCacheSettings               string         `json:"cdn_cache_settings"`
	CDNCacheSettingsMaximumTTL     float64        `json:"cdn_cache_settings_maximum_ttl"`
	EnableCachingForPost           bool           `json:"enable_caching_for_post"`
	EnableCachingForOptions        bool           `json:"enable_caching_for_options"`
	EnableQueryStringSort          bool           `json:"enable_query_string_sort"`
	CacheByQueryString             string         `json:"cache_by_query_string,omitempty"`
	QueryStringFields              []string       `json:"query_string_fields,omitempty"`
	CacheByCookie                  string         `json:"cache_by_cookie,omitempty"`
	CookieNames                    []string       `json:"cookie_names,omitempty"`
	Inline                         map[string]any `json:"-"`
}

type cacheSettingFields CacheSetting

func (c CacheSetting) MarshalJSON() ([]byte, error) {
	if c.Inline != nil {
		return json.Marshal(c.Inline)
	}
	out := struct {
		cacheSettingFields
		QueryStringFields *[]string `json:"query_string_fields,omitempty"`
		CookieNames       *[]string `json:"cookie_names,omitempty"`
	}{cacheSettingFields: cacheSettingFields(c)}
	if c.CacheByQueryString != "" {
		fields := nonNilStrings(c.QueryStringFields)
		out.QueryStringFields = &fields
	}
	if c.CacheByCookie != "" {
		names := nonNilStrings(c.CookieNames)
		out.CookieNames = &names
	}
	return json.Marshal(out)
}

func (c *CacheSetting) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	_, hasBrowser := raw["browser_cache_settings"]
	_, hasCDN := raw["cdn_cache_settings"]
	if !hasBrowser || !hasCDN {
		name, _ := raw["name"].(string)
		*c = CacheSetting{Name: name, Inline: raw}
		return nil
	}
	var fields cacheSettingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = CacheSetting(fields)
	return nil
}

// IsInline reports whether the setting came from a setCache object.
func (c CacheSetting) IsInline() bool {
	return c.Inline != nil
}

// Rule is one compiled CDN rule.
type Rule struct {
	Name        string        `json:"name"`
	Phase       Phase         `json:"phase"`
	Description string        `json:"description"`
	IsActive    bool          `json:"is_active"`
	Order       int           `json:"order"`
	Criteria    [][]Criterion `json:"criteria"`
	Behaviors   []Behavior    `json:"behaviors"`
}

type Criterion struct {
	Variable    string `json:"variable"`
	Operator    string `json:"operator"`
	Conditional string `json:"conditional"`
	InputValue  string `json:"input_value"`
}

// Behavior target is a string, an object, a boolean or null.
type Behavior struct {
	Name   string `json:"name"`
	Target any    `json:"target"`
}

// DomainSetting serializes as {} when no domain was configured.
type DomainSetting struct {
	Name                       string   `json:"name"`
	CnameAccessOnly            bool     `json:"cname_access_only"`
	Cnames                     []string `json:"cnames"`
	DigitalCertificateID       any      `json:"digital_certificate_id"`
	EdgeApplicationID          *int64   `json:"edge_application_id"`
	EdgeFirewallID             *int64   `json:"edge_firewall_id"`
	Active                     bool     `json:"active"`
	IsMtlsEnabled              bool     `json:"is_mtls_enabled"`
	MtlsVerification           string   `json:"mtls_verification,omitempty"`
	MtlsTrustedCACertificateID *int64   `json:"mtls_trusted_ca_certificate_id,omitempty"`
	CRLList                    []int64  `json:"crl_list,omitempty"`

	configured bool
}

type domainSettingFields DomainSetting

// Configured reports whether the manifest carries a domain.
func (d DomainSetting) Configured() bool {
	return d.configured
}

func (d DomainSetting) MarshalJSON() ([]byte, error) {
	if !d.configured {
		return []byte("{}"), nil
	}
	out := struct {
		domainSettingFields
		CRLList *[]int64 `json:"crl_list,omitempty"`
	}{domainSettingFields: domainSettingFields(d)}
	if d.IsMtlsEnabled {
		list := d.CRLList
		if list == nil {
			list = []int64{}
		}
		out.CRLList = &list
	}
	return json.Marshal(out)
}

func (d *DomainSetting) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*d = DomainSetting{}
		return nil
	}
	var fields domainSettingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = DomainSetting(fields)
	d.configured = true
	return nil
}

type PurgeSetting struct {
	Type   string   `json:"type"`
	URLs   []string `json:"urls"`
	Method string   `json:"method"`
	Layer  string   `json:"layer,omitempty"`
}

// Encode renders the manifest as indented JSON.
func Encode(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m.normalized(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a manifest.json document.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m.normalized(), nil
}

func (m Manifest) normalized() Manifest {
	if m.Origin == nil {
		m.Origin = []OriginSetting{}
	}
	if m.CacheSettings == nil {
		m.CacheSettings = []CacheSetting{}
	}
	if m.Rules == nil {
		m.Rules = []Rule{}
	}
	if m.Purge == nil {
		m.Purge = []PurgeSetting{}
	}
	if m.NetworkList == nil {
		m.NetworkList = []NetworkList{}
	}
	return m
}

func inlineCache(value map[string]any) CacheSetting {
	name, _ := value["name"].(string)
	return CacheSetting{Name: name, Inline: maps.Clone(value)}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func ptr[T any](value T) *T {
	return &value
}
