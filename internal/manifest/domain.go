// Where: internal/manifest/domain.go
// What: Domain section normalization.
// Why: Validate certificate and mTLS settings before they reach the platform.
package manifest

const letsEncrypt = "lets_encrypt"

// DomainStrategy normalizes the optional custom domain.
type DomainStrategy struct{}

func (DomainStrategy) Generate(cfg Config, _ References) (DomainSetting, error) {
	domain := cfg.Domain
	if domain == nil {
		return DomainSetting{}, nil
	}

	if cert, ok := domain.DigitalCertificateID.(string); ok && cert != "" && cert != letsEncrypt {
		return DomainSetting{}, NewError(KindInvalidCertificate, "domain.digitalCertificateId", cert,
			"Domain %s has an invalid digital certificate ID: %s. Only '%s' or null is supported.",
			domain.Name, cert, letsEncrypt)
	}
	if domain.Mtls != nil {
		switch domain.Mtls.Verification {
		case "enforce", "permissive":
		default:
			return DomainSetting{}, NewError(KindInvalidMtlsVerification, "domain.mtls.verification", domain.Mtls.Verification,
				"Domain %s has an invalid verification value: %s. Only 'enforce' or 'permissive' is supported.",
				domain.Name, domain.Mtls.Verification)
		}
	}

	setting := DomainSetting{
		Name:                 domain.Name,
		CnameAccessOnly:      domain.CnameAccessOnly,
		Cnames:               append([]string{}, domain.Cnames...),
		DigitalCertificateID: certificateID(domain.DigitalCertificateID),
		EdgeApplicationID:    nonZeroID(domain.EdgeApplicationID),
		EdgeFirewallID:       nonZeroID(domain.EdgeFirewallID),
		Active:               true,
		configured:           true,
	}
	if domain.Mtls != nil {
		setting.IsMtlsEnabled = true
		setting.MtlsVerification = domain.Mtls.Verification
		setting.MtlsTrustedCACertificateID = nonZeroID(domain.Mtls.TrustedCACertificateID)
		setting.CRLList = append([]int64{}, domain.Mtls.CRLList...)
	}
	return setting, nil
}

func certificateID(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return v
	case int:
		if v == 0 {
			return nil
		}
		return int64(v)
	case int64:
		if v == 0 {
			return nil
		}
		return v
	case float64:
		if v == 0 {
			return nil
		}
		return v
	default:
		return v
	}
}

func nonZeroID(value *int64) *int64 {
	if value == nil || *value == 0 {
		return nil
	}
	return ptr(*value)
}
