package searxup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func caddyPorts(t *testing.T, doc []byte) []string {
	t.Helper()
	var parsed struct {
		Services struct {
			Caddy struct {
				Ports []string `yaml:"ports"`
			} `yaml:"caddy"`
		} `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(doc, &parsed))
	return parsed.Services.Caddy.Ports
}

func Test_PortMappingPatch_Apply(t *testing.T) {
	base, err := renderCompose(buildCompose(cfgFixture()))
	require.NoError(t, err)

	patch := PortMappingPatch{Service: "caddy", Mapping: "8888:8888"}

	patched, err := patch.Apply(base)
	require.NoError(t, err)
	ports := caddyPorts(t, patched)
	assert.Contains(t, ports, "8888:8888")
	assert.Contains(t, ports, "80:80")
	assert.Contains(t, ports, "443:443/udp")

	// Re-applying must not duplicate the mapping.
	again, err := patch.Apply(patched)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(again), "8888:8888"))
	assert.Equal(t, caddyPorts(t, patched), caddyPorts(t, again))
}

func Test_PortMappingPatch_Apply_AlreadyPresent(t *testing.T) {
	compose := buildCompose(cfgFixture())
	compose.Services.Caddy.Ports = append(compose.Services.Caddy.Ports, "8888:8888")
	doc, err := renderCompose(compose)
	require.NoError(t, err)

	patch := PortMappingPatch{Service: "caddy", Mapping: "8888:8888"}
	out, err := patch.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
}

func Test_PortMappingPatch_Apply_Errors(t *testing.T) {
	patch := PortMappingPatch{Service: "caddy", Mapping: "8888:8888"}

	_, err := patch.Apply([]byte("volumes: {}\n"))
	assert.ErrorContains(t, err, "no services section")

	_, err = patch.Apply([]byte("services:\n  redis: {}\n"))
	assert.ErrorContains(t, err, "no caddy service")

	_, err = patch.Apply([]byte("{unclosed"))
	assert.Error(t, err)
}

func Test_buildCompose(t *testing.T) {
	cfg := cfgFixture()
	compose := buildCompose(cfg)

	assert.Equal(t, cfg.Images.Caddy, compose.Services.Caddy.Image)
	assert.Equal(t, cfg.Images.Redis, compose.Services.Redis.Image)
	assert.Equal(t, cfg.Images.Searxng, compose.Services.Searxng.Image)
	assert.Equal(t, []string{"redis"}, compose.Services.Searxng.DependsOn)

	// The application and cache are only reachable through the proxy.
	assert.Empty(t, compose.Services.Searxng.Ports)
	assert.Empty(t, compose.Services.Redis.Ports)

	doc, err := renderCompose(compose)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "SEARXNG_HOSTNAME=${SEARXNG_HOSTNAME}")
	assert.True(t, strings.HasPrefix(string(doc), "# Generated by searxup."))
}
