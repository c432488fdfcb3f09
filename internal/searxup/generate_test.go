package searxup

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func cfgFixture() Config {
	return Config{
		ProjectDir: "/home/op/searxng",
		HTTPPort:   8888,
		AppPort:    8080,
		Images: ImagesConfig{
			Searxng: "docker.io/searxng/searxng:latest",
			Redis:   "docker.io/valkey/valkey:8-alpine",
			Caddy:   "docker.io/library/caddy:2-alpine",
		},
	}
}

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func mustProfile(t *testing.T, variant Variant, input VariantInput) VariantProfile {
	t.Helper()
	profile, err := ResolveProfile(variant, planFixture(), input)
	require.NoError(t, err)
	return profile
}

func Test_Generate_HostConsistency(t *testing.T) {
	testCases := []struct {
		variant Variant
		input   VariantInput
	}{
		{variant: VariantIPOnly},
		{variant: VariantLocalHostname, input: VariantInput{HostnameLabel: "lab"}},
		{variant: VariantPublicDomain, input: VariantInput{Domain: "search.example.com", ContactEmail: "ops@example.com"}},
		{variant: VariantDualHTTPHTTPS, input: VariantInput{HostnameLabel: "lab"}},
	}

	for _, tc := range testCases {
		t.Run(tc.variant.String(), func(t *testing.T) {
			profile := mustProfile(t, tc.variant, tc.input)
			set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
			require.NoError(t, err)

			host := profile.EffectiveHost
			assert.Contains(t, string(set.EnvFile), "SEARXNG_HOSTNAME="+host)
			assert.Contains(t, string(set.EnvFile), "SEARXNG_BASE_URL=https://"+host)
			assert.Contains(t, string(set.AppSettings), "https://"+host)
			assert.Contains(t, string(set.Caddyfile), host)
		})
	}
}

func Test_Generate_Idempotent(t *testing.T) {
	profile := mustProfile(t, VariantLocalHostname, VariantInput{})
	cfg := cfgFixture()
	plan := planFixture()

	first, err := Generate(cfg, plan, profile, testSecret)
	require.NoError(t, err)
	second, err := Generate(cfg, plan, profile, testSecret)
	require.NoError(t, err)

	assert.Equal(t, first.EnvFile, second.EnvFile)
	assert.Equal(t, first.AppSettings, second.AppSettings)
	assert.Equal(t, first.Caddyfile, second.Caddyfile)
	assert.Equal(t, first.Compose, second.Compose)
}

func Test_Generate_SecretThreading(t *testing.T) {
	profile := mustProfile(t, VariantIPOnly, VariantInput{})
	set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
	require.NoError(t, err)

	// The secret appears in exactly the two artifacts that need it.
	assert.Contains(t, string(set.EnvFile), "SEARXNG_SECRET="+testSecret)
	assert.Contains(t, string(set.AppSettings), testSecret)
	assert.NotContains(t, string(set.Caddyfile), testSecret)
	assert.NotContains(t, string(set.Compose), testSecret)

	_, err = Generate(cfgFixture(), planFixture(), profile, "hunter2")
	assert.Error(t, err)
}

func Test_Generate_DualVariant(t *testing.T) {
	profile := mustProfile(t, VariantDualHTTPHTTPS, VariantInput{HostnameLabel: "lab"})
	set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
	require.NoError(t, err)

	caddy := string(set.Caddyfile)
	// One combined server block carrying both listeners.
	assert.Contains(t, caddy, "http://lab.local:8888, https://lab.local {")
	assert.NotContains(t, caddy, "upgrade-insecure-requests")
	assert.Contains(t, caddy, "tls internal")

	require.NotNil(t, set.PortPatch)
	assert.Equal(t, "8888:8888", set.PortPatch.Mapping)
	assert.Contains(t, string(set.Compose), "8888:8888")
}

func Test_Generate_LocalVariants_SelfSigned(t *testing.T) {
	for _, variant := range []Variant{VariantIPOnly, VariantLocalHostname} {
		profile := mustProfile(t, variant, VariantInput{})
		set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
		require.NoError(t, err)

		caddy := string(set.Caddyfile)
		assert.Contains(t, caddy, "tls internal", variant.String())
		// No certificate issuer contact anywhere.
		assert.NotContains(t, caddy, "@example.com", variant.String())
		assert.Contains(t, string(set.EnvFile), "# LETSENCRYPT_EMAIL=", variant.String())
		assert.NotNil(t, set.PortPatch, variant.String())
	}
}

func Test_Generate_PublicDomain(t *testing.T) {
	profile := mustProfile(t, VariantPublicDomain,
		VariantInput{Domain: "search.example.com", ContactEmail: "ops@example.com"})
	set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
	require.NoError(t, err)

	assert.Contains(t, string(set.EnvFile), "LETSENCRYPT_EMAIL=ops@example.com")
	assert.Contains(t, string(set.Caddyfile), "tls ops@example.com")
	assert.NotContains(t, string(set.Caddyfile), "tls internal")
	assert.Nil(t, set.PortPatch)
	assert.NotContains(t, string(set.Compose), "8888:8888")
}

// Scenario: eth0 at 192.168.10.5/24 behind 192.168.10.1, local hostname
// variant with the default label.
func Test_EndToEnd_LocalHostname(t *testing.T) {
	discovery := discoveryFixture()
	plan, err := BuildPlan(discovery, PlanOverrides{}, testDNS)
	require.NoError(t, err)
	assert.Equal(t, "192.168.10.15", plan.StaticAddress.String())

	profile, err := ResolveProfile(VariantLocalHostname, plan, VariantInput{HostnameLabel: "searxng"})
	require.NoError(t, err)
	assert.Equal(t, "searxng.local", profile.EffectiveHost)

	set, err := Generate(cfgFixture(), plan, profile, testSecret)
	require.NoError(t, err)
	assert.Contains(t, string(set.EnvFile), "SEARXNG_HOSTNAME=searxng.local")
	assert.Contains(t, string(set.EnvFile), "SEARXNG_BASE_URL=https://searxng.local")
}

func Test_Generate_SettingsDocument(t *testing.T) {
	profile := mustProfile(t, VariantPublicDomain,
		VariantInput{Domain: "search.example.com", ContactEmail: "ops@example.com"})
	set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
	require.NoError(t, err)

	var settings AppSettings
	require.NoError(t, yaml.Unmarshal(set.AppSettings, &settings))
	assert.True(t, settings.UseDefaultSettings)
	assert.Equal(t, testSecret, settings.Server.SecretKey)
	assert.Equal(t, "https://search.example.com", settings.Server.BaseURL)
	assert.Equal(t, 8080, settings.Server.Port)
	assert.True(t, settings.Server.Limiter)
	assert.Equal(t, []string{"html", "json", "csv", "rss"}, settings.Search.Formats)
}

func Test_Generate_ComposeTopology(t *testing.T) {
	profile := mustProfile(t, VariantLocalHostname, VariantInput{})
	set, err := Generate(cfgFixture(), planFixture(), profile, testSecret)
	require.NoError(t, err)

	var doc struct {
		Services map[string]any `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(set.Compose, &doc))
	assert.Len(t, doc.Services, 3)
	for _, name := range []string{"caddy", "redis", "searxng"} {
		assert.Contains(t, doc.Services, name)
	}
}

func Test_Generate_IPOnlyHost(t *testing.T) {
	plan := planFixture()
	plan.StaticAddress = net.ParseIP("10.1.2.3").To4()
	plan.Gateway = net.ParseIP("10.1.2.1").To4()

	profile, err := ResolveProfile(VariantIPOnly, plan, VariantInput{})
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", profile.EffectiveHost)

	set, err := Generate(cfgFixture(), plan, profile, testSecret)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(set.Caddyfile), "https://10.1.2.3"))
}
