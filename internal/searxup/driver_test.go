package searxup

import (
	"os"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Driver_Stages(t *testing.T) {
	d := &Driver{Cfg: cfgFixture()}
	profile := mustProfile(t, VariantLocalHostname, VariantInput{})

	stages := d.Stages(planFixture(), profile, DeployOptions{})
	names := lo.Map(stages, func(s Stage, _ int) string { return s.Name })
	assert.Equal(t, []string{
		"prerequisites", "packages", "addressing", "mdns",
		"artifacts", "containers", "verify",
	}, names)

	// Only the first two stages abort the run.
	for i, stage := range stages {
		assert.Equal(t, i < 2, stage.Fatal, stage.Name)
	}
}

func Test_countRunning(t *testing.T) {
	testCases := []struct {
		name     string
		out      string
		expected int
	}{
		{
			name:     "json array",
			out:      `[{"State":"running"},{"State":"running"},{"State":"exited"}]`,
			expected: 2,
		},
		{
			name: "line delimited",
			out: `{"State":"running"}
{"State":"Running"}
{"State":"running"}
`,
			expected: 3,
		},
		{
			name:     "empty output",
			out:      "",
			expected: 0,
		},
		{
			name:     "garbage",
			out:      "no services",
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, countRunning(tc.out))
		})
	}
}

func Test_LoadOrCreateSecret(t *testing.T) {
	cfg := cfgFixture()
	cfg.ProjectDir = t.TempDir()

	// No env file yet: a fresh secret is minted.
	fresh, err := LoadOrCreateSecret(cfg)
	require.NoError(t, err)
	assert.True(t, ValidSecret(fresh))

	// A valid stored secret is reused verbatim.
	env := "SEARXNG_HOSTNAME=searxng.local\nSEARXNG_SECRET=" + testSecret + "\n"
	require.NoError(t, os.WriteFile(cfg.EnvPath(), []byte(env), 0o640))
	got, err := LoadOrCreateSecret(cfg)
	require.NoError(t, err)
	assert.Equal(t, testSecret, got)

	// A malformed stored secret is replaced, not propagated.
	require.NoError(t, os.WriteFile(cfg.EnvPath(), []byte("SEARXNG_SECRET=changeme\n"), 0o640))
	replaced, err := LoadOrCreateSecret(cfg)
	require.NoError(t, err)
	assert.True(t, ValidSecret(replaced))
	assert.NotEqual(t, "changeme", replaced)
}

func Test_WriteArtifacts(t *testing.T) {
	cfg := cfgFixture()
	cfg.ProjectDir = t.TempDir()
	profile := mustProfile(t, VariantLocalHostname, VariantInput{})

	set, err := Generate(cfg, planFixture(), profile, testSecret)
	require.NoError(t, err)
	require.NoError(t, WriteArtifacts(cfg, set, profile, testSecret))

	for _, path := range []string{cfg.EnvPath(), cfg.SettingsPath(), cfg.CaddyPath(), cfg.ComposePath()} {
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, path)
	}

	vars, err := ReadDotEnv(cfg.EnvPath())
	require.NoError(t, err)
	assert.Equal(t, "searxng.local", vars["SEARXNG_HOSTNAME"])
	assert.Equal(t, testSecret, vars["SEARXNG_SECRET"])
}

func Test_WriteArtifacts_KeepsOperatorEnvEdits(t *testing.T) {
	cfg := cfgFixture()
	cfg.ProjectDir = t.TempDir()
	profile := mustProfile(t, VariantLocalHostname, VariantInput{})

	require.NoError(t, ensureDir(cfg.ProjectDir, 0o750))
	seeded := "# keep: proxy host for the lab\nSEARXNG_HOSTNAME=old.local\nCUSTOM_FLAG=1\n"
	require.NoError(t, os.WriteFile(cfg.EnvPath(), []byte(seeded), 0o640))

	set, err := Generate(cfg, planFixture(), profile, testSecret)
	require.NoError(t, err)
	require.NoError(t, WriteArtifacts(cfg, set, profile, testSecret))

	content, err := os.ReadFile(cfg.EnvPath())
	require.NoError(t, err)
	assert.Contains(t, string(content), "# keep: proxy host for the lab")
	assert.Contains(t, string(content), "CUSTOM_FLAG=1")
	assert.Contains(t, string(content), "SEARXNG_HOSTNAME=searxng.local")
	assert.NotContains(t, string(content), "old.local")
}
