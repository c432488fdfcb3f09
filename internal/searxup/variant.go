package searxup

import (
	"errors"
	"fmt"
	"strings"
)

// Variant is one of the four mutually exclusive deployment topologies.
type Variant int

const (
	VariantIPOnly Variant = iota
	VariantLocalHostname
	VariantPublicDomain
	VariantDualHTTPHTTPS
)

const DefaultHostnameLabel = "searxng"

var ErrMissingVariantInput = errors.New("missing input for deployment variant")

func (v Variant) String() string {
	switch v {
	case VariantIPOnly:
		return "ip-only"
	case VariantLocalHostname:
		return "local-hostname"
	case VariantPublicDomain:
		return "public-domain"
	case VariantDualHTTPHTTPS:
		return "dual-http-https"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant maps the CLI spelling back to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ip-only", "ip":
		return VariantIPOnly, nil
	case "local-hostname", "local":
		return VariantLocalHostname, nil
	case "public-domain", "public":
		return VariantPublicDomain, nil
	case "dual-http-https", "dual":
		return VariantDualHTTPHTTPS, nil
	}
	return 0, fmt.Errorf("unknown variant %q (want ip-only, local-hostname, public-domain or dual-http-https)", s)
}

// UsesMDNS reports whether the variant registers a .local hostname.
func (v Variant) UsesMDNS() bool {
	return v == VariantLocalHostname || v == VariantDualHTTPHTTPS
}

// NeedsPlaintextPort reports whether the variant exposes the alternate
// plaintext port for software and API access.
func (v Variant) NeedsPlaintextPort() bool {
	return v != VariantPublicDomain
}

// VariantInput is the raw operator input bound to a variant choice.
type VariantInput struct {
	HostnameLabel string
	Domain        string
	ContactEmail  string
}

// VariantProfile is the resolved variant choice. EffectiveHost is the
// single externally addressable name every generated artifact must
// agree on; it is derived here exactly once per run.
type VariantProfile struct {
	Variant       Variant
	HostnameLabel string
	Domain        string
	ContactEmail  string
	EffectiveHost string
}

// ResolveProfile validates the inputs required by the chosen variant and
// derives the effective host. Fields a variant does not use are dropped
// so later stages cannot depend on them by accident.
func ResolveProfile(v Variant, plan NetworkPlan, in VariantInput) (VariantProfile, error) {
	profile := VariantProfile{Variant: v}

	switch v {
	case VariantIPOnly:
		profile.EffectiveHost = plan.StaticAddress.String()

	case VariantLocalHostname, VariantDualHTTPHTTPS:
		label := strings.TrimSpace(in.HostnameLabel)
		if label == "" {
			label = DefaultHostnameLabel
		}
		if strings.Contains(label, ".") {
			return VariantProfile{}, fmt.Errorf("%w: hostname label %q must not contain dots", ErrMissingVariantInput, label)
		}
		profile.HostnameLabel = label
		profile.EffectiveHost = label + ".local"

	case VariantPublicDomain:
		domain := strings.TrimSpace(in.Domain)
		email := strings.TrimSpace(in.ContactEmail)
		if domain == "" {
			return VariantProfile{}, fmt.Errorf("%w: public-domain requires a domain", ErrMissingVariantInput)
		}
		if email == "" {
			return VariantProfile{}, fmt.Errorf("%w: public-domain requires a contact email", ErrMissingVariantInput)
		}
		profile.Domain = domain
		profile.ContactEmail = email
		profile.EffectiveHost = domain

	default:
		return VariantProfile{}, fmt.Errorf("unknown variant %d", int(v))
	}

	return profile, nil
}
