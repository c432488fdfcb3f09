package searxup

import (
	"fmt"
	"strings"
)

// ArtifactSet is the full set of generated configuration artifacts. All
// four renderings agree on the profile's effective host; Generate is
// deterministic, so identical inputs produce byte-identical output.
type ArtifactSet struct {
	EnvFile     []byte
	AppSettings []byte
	Caddyfile   []byte
	Compose     []byte

	// PortPatch is non-nil for variants that expose the alternate
	// plaintext port. It is already applied to Compose; it is kept
	// here so re-runs can patch a pre-existing compose file in place.
	PortPatch *PortMappingPatch
}

const envFileTemplate = `# Generated by searxup. Regenerate instead of editing.
# By default listen on https://{{.Host}}
SEARXNG_HOSTNAME={{.Host}}
SEARXNG_BASE_URL={{.BaseURL}}

# Internal application listener; the reverse proxy is the only client.
SEARXNG_BIND_ADDRESS=0.0.0.0
SEARXNG_PORT={{.AppPort}}

SEARXNG_SECRET={{.Secret}}

# Contact for automatic certificate issuance. Only used with a public
# domain; leave commented for self-signed local deployments.
{{if .ACMEEmail}}LETSENCRYPT_EMAIL={{.ACMEEmail}}{{else}}# LETSENCRYPT_EMAIL=admin@example.com{{end}}
`

type envFileData struct {
	Host      string
	BaseURL   string
	AppPort   int
	Secret    string
	ACMEEmail string
}

// Generate renders the environment file, application settings, reverse
// proxy configuration and container topology from the frozen plan and
// profile. It is a pure function: no file system access, no clock, no
// randomness (the secret is passed in).
func Generate(cfg Config, plan NetworkPlan, profile VariantProfile, secret string) (ArtifactSet, error) {
	if profile.EffectiveHost == "" {
		return ArtifactSet{}, fmt.Errorf("%w: profile has no effective host", ErrMissingVariantInput)
	}
	if !ValidSecret(secret) {
		return ArtifactSet{}, fmt.Errorf("secret must be 64 lowercase hex characters")
	}

	env, err := renderTemplate(".env", envFileTemplate, envFileData{
		Host:      profile.EffectiveHost,
		BaseURL:   "https://" + profile.EffectiveHost,
		AppPort:   cfg.AppPort,
		Secret:    secret,
		ACMEEmail: profile.ContactEmail,
	})
	if err != nil {
		return ArtifactSet{}, err
	}

	settings, err := renderSettings(buildSettings(cfg, profile, secret))
	if err != nil {
		return ArtifactSet{}, err
	}

	caddyfile, err := buildCaddyfile(cfg, profile)
	if err != nil {
		return ArtifactSet{}, err
	}

	compose := buildCompose(cfg)
	var patch *PortMappingPatch
	if profile.Variant.NeedsPlaintextPort() {
		patch = &PortMappingPatch{
			Service: "caddy",
			Mapping: fmt.Sprintf("%d:%d", cfg.HTTPPort, cfg.HTTPPort),
		}
		compose.Services.Caddy.Ports = append(compose.Services.Caddy.Ports, patch.Mapping)
	}
	composeDoc, err := renderCompose(compose)
	if err != nil {
		return ArtifactSet{}, err
	}

	set := ArtifactSet{
		EnvFile:     env,
		AppSettings: settings,
		Caddyfile:   caddyfile,
		Compose:     composeDoc,
		PortPatch:   patch,
	}
	if err := set.checkConsistency(profile); err != nil {
		return ArtifactSet{}, err
	}
	return set, nil
}

// checkConsistency asserts the one invariant that must never break:
// every host-bearing artifact names the profile's effective host. A
// failure here is a generator bug, not an operator error.
func (s ArtifactSet) checkConsistency(profile VariantProfile) error {
	host := profile.EffectiveHost
	if !strings.Contains(string(s.EnvFile), "SEARXNG_HOSTNAME="+host) {
		return fmt.Errorf("generated env file does not name host %s", host)
	}
	if !strings.Contains(string(s.AppSettings), "https://"+host) {
		return fmt.Errorf("generated settings do not name host %s", host)
	}
	if !strings.Contains(string(s.Caddyfile), host) {
		return fmt.Errorf("generated Caddyfile does not name host %s", host)
	}
	return nil
}

// envValues returns the env file entries as a map, used when updating an
// existing .env in place without clobbering operator comments.
func envValues(cfg Config, profile VariantProfile, secret string) map[string]string {
	vars := map[string]string{
		"SEARXNG_HOSTNAME":     profile.EffectiveHost,
		"SEARXNG_BASE_URL":     "https://" + profile.EffectiveHost,
		"SEARXNG_BIND_ADDRESS": "0.0.0.0",
		"SEARXNG_PORT":         fmt.Sprintf("%d", cfg.AppPort),
		"SEARXNG_SECRET":       secret,
	}
	if profile.ContactEmail != "" {
		vars["LETSENCRYPT_EMAIL"] = profile.ContactEmail
	}
	return vars
}
