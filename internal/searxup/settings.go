package searxup

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// AppSettings is the searxng settings.yml document. Only the keys the
// installer owns are rendered; use_default_settings pulls everything
// else from the image defaults.
type AppSettings struct {
	UseDefaultSettings bool           `yaml:"use_default_settings"`
	Server             ServerSettings `yaml:"server"`
	Search             SearchSettings `yaml:"search"`
	Redis              RedisSettings  `yaml:"redis"`
}

type ServerSettings struct {
	SecretKey      string `yaml:"secret_key"`
	BaseURL        string `yaml:"base_url"`
	BindAddress    string `yaml:"bind_address"`
	Port           int    `yaml:"port"`
	ImageProxy     bool   `yaml:"image_proxy"`
	Limiter        bool   `yaml:"limiter"`
	PublicInstance bool   `yaml:"public_instance"`
}

type SearchSettings struct {
	SafeSearch   int      `yaml:"safe_search"`
	Autocomplete string   `yaml:"autocomplete"`
	Formats      []string `yaml:"formats"`
}

type RedisSettings struct {
	URL string `yaml:"url"`
}

// buildSettings derives the settings document from the resolved profile.
// The json/csv/rss formats stay enabled so the alternate plaintext port
// remains useful to API clients.
func buildSettings(cfg Config, profile VariantProfile, secret string) AppSettings {
	return AppSettings{
		UseDefaultSettings: true,
		Server: ServerSettings{
			SecretKey:      secret,
			BaseURL:        "https://" + profile.EffectiveHost,
			BindAddress:    "0.0.0.0",
			Port:           cfg.AppPort,
			ImageProxy:     true,
			Limiter:        profile.Variant == VariantPublicDomain,
			PublicInstance: profile.Variant == VariantPublicDomain,
		},
		Search: SearchSettings{
			SafeSearch:   0,
			Autocomplete: "duckduckgo",
			Formats:      []string{"html", "json", "csv", "rss"},
		},
		Redis: RedisSettings{URL: "redis://redis:6379/0"},
	}
}

func renderSettings(s AppSettings) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings.yml: %w", err)
	}
	return append([]byte("# Generated by searxup. Regenerate instead of editing.\n"), out...), nil
}
