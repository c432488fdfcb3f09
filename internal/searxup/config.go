package searxup

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config carries the installer defaults: where the compose project
// lives, which images to pull, which ports to expose and which packages
// the host needs. Values come from built-in defaults, an optional
// searxup.yaml and SEARXUP_* environment variables, in that order.
type Config struct {
	ProjectDir string `mapstructure:"project_dir"`

	// HTTPPort is the alternate plaintext ingress; AppPort is where
	// searxng itself listens inside the compose network.
	HTTPPort int `mapstructure:"http_port"`
	AppPort  int `mapstructure:"app_port"`

	Images   ImagesConfig `mapstructure:"images"`
	DNS      []string     `mapstructure:"dns"`
	Packages []string     `mapstructure:"packages"`
}

type ImagesConfig struct {
	Searxng string `mapstructure:"searxng"`
	Redis   string `mapstructure:"redis"`
	Caddy   string `mapstructure:"caddy"`
}

const (
	AltHTTPPort    = 8888
	defaultAppPort = 8080
)

// LoadConfig reads the optional searxup.yaml from the working directory
// or ~/.config/searxup, layering SEARXUP_* environment variables on top.
func LoadConfig() (Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("project_dir", filepath.Join(home, "searxng"))
	v.SetDefault("http_port", AltHTTPPort)
	v.SetDefault("app_port", defaultAppPort)
	v.SetDefault("images.searxng", "docker.io/searxng/searxng:latest")
	v.SetDefault("images.redis", "docker.io/valkey/valkey:8-alpine")
	v.SetDefault("images.caddy", "docker.io/library/caddy:2-alpine")
	v.SetDefault("dns", []string{"1.1.1.1", "9.9.9.9"})
	v.SetDefault("packages", []string{
		"docker.io", "docker-compose-v2", "avahi-daemon", "curl",
	})

	v.SetConfigName("searxup")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "searxup"))
	}
	v.SetEnvPrefix("searxup")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("read searxup.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse searxup.yaml: %w", err)
	}
	return cfg, nil
}

// FallbackDNS parses the configured DNS servers, dropping anything that
// is not an IPv4 address.
func (c Config) FallbackDNS() []net.IP {
	var out []net.IP
	for _, s := range c.DNS {
		if ip := net.ParseIP(s); ip != nil && ip.To4() != nil {
			out = append(out, ip.To4())
		}
	}
	return out
}

// Artifact locations inside the project directory.
func (c Config) EnvPath() string      { return filepath.Join(c.ProjectDir, ".env") }
func (c Config) SettingsPath() string { return filepath.Join(c.ProjectDir, "searxng", "settings.yml") }
func (c Config) CaddyPath() string    { return filepath.Join(c.ProjectDir, "Caddyfile") }
func (c Config) ComposePath() string  { return filepath.Join(c.ProjectDir, "docker-compose.yaml") }
