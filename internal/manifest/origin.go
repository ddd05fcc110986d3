// Where: internal/manifest/origin.go
// What: Origin section normalization.
// Why: Apply origin defaults and reject unusable origin declarations early.
package manifest

import "fmt"

const (
	defaultProtocolPolicy      = "preserve"
	defaultBalanceMethod       = "ip_hash"
	defaultConnectionTimeout   = 60
	defaultTimeoutBetweenBytes = 120
	defaultHostHeader          = "${host}"
	maxAddressWeight           = 10
)

// OriginStrategy normalizes origin declarations.
type OriginStrategy struct{}

func (OriginStrategy) Generate(cfg Config, _ References) ([]OriginSetting, error) {
	out := make([]OriginSetting, 0, len(cfg.Origin))
	for i, origin := range cfg.Origin {
		field := fmt.Sprintf("origin[%d]", i)
		setting, err := normalizeOrigin(origin, field)
		if err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	return out, nil
}

func normalizeOrigin(origin Origin, field string) (OriginSetting, error) {
	if !isSupportedOriginType(origin.Type) {
		return OriginSetting{}, NewError(KindUnsupportedOriginType, field+".type", origin.Type,
			"Origin %q has unsupported type '%s'; expected one of %s, %s, %s or %s",
			origin.Name, origin.Type, OriginSingle, OriginObjectStorage, OriginLoadBalancer, OriginLiveIngest)
	}

	setting := OriginSetting{
		Name:       origin.Name,
		OriginType: origin.Type,
	}
	if origin.Type == OriginObjectStorage {
		setting.Bucket = ptr(origin.Bucket)
		setting.Prefix = ptr(origin.Prefix)
		return setting, nil
	}

	if origin.Path == "/" {
		return OriginSetting{}, NewError(KindInvalidOriginPath, field+".path", origin.Path,
			"Origin %q path cannot be '/'; use an empty string or a sub-path such as '/api'", origin.Name)
	}
	if len(origin.Addresses) == 0 {
		return OriginSetting{}, NewError(KindMissingAddresses, field+".addresses", nil,
			"Origin %q of type '%s' requires at least one address", origin.Name, origin.Type)
	}

	addresses := make([]AddressSetting, 0, len(origin.Addresses))
	for j, address := range origin.Addresses {
		if address.Weight != nil && (*address.Weight < 0 || *address.Weight > maxAddressWeight) {
			return OriginSetting{}, NewError(KindInvalidWeight, fmt.Sprintf("%s.addresses[%d].weight", field, j), *address.Weight,
				"Origin %q address '%s' has weight %d; weight must be between 0 and %d",
				origin.Name, address.Address, *address.Weight, maxAddressWeight)
		}
		entry := AddressSetting{Address: address.Address}
		if address.Weight != nil {
			entry.Weight = ptr(*address.Weight)
		}
		addresses = append(addresses, entry)
	}

	setting.OriginPath = ptr(origin.Path)
	setting.OriginProtocolPolicy = stringOr(origin.ProtocolPolicy, defaultProtocolPolicy)
	setting.Method = stringOr(origin.Method, defaultBalanceMethod)
	setting.IsOriginRedirectionEnabled = ptr(origin.Redirection != nil && *origin.Redirection)
	setting.ConnectionTimeout = ptr(intOr(origin.ConnectionTimeout, defaultConnectionTimeout))
	setting.TimeoutBetweenBytes = ptr(intOr(origin.TimeoutBetweenBytes, defaultTimeoutBetweenBytes))
	setting.HostHeader = stringOr(origin.HostHeader, defaultHostHeader)
	setting.Addresses = addresses

	if origin.HMAC != nil {
		setting.HMACAuthentication = ptr(true)
		setting.HMACRegionName = origin.HMAC.Region
		setting.HMACAccessKey = origin.HMAC.AccessKey
		setting.HMACSecretKey = origin.HMAC.SecretKey
	}
	return setting, nil
}

func isSupportedOriginType(kind string) bool {
	switch kind {
	case OriginSingle, OriginObjectStorage, OriginLoadBalancer, OriginLiveIngest:
		return true
	default:
		return false
	}
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
