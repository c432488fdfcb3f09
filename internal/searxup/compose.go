package searxup

import (
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// composeFile is the container topology the installer owns: the reverse
// proxy, the cache and the application. Structs keep the rendered YAML
// field order stable so regeneration is byte-identical.
type composeFile struct {
	Services composeServices           `yaml:"services"`
	Networks map[string]composeNetwork `yaml:"networks"`
	Volumes  map[string]composeNetwork `yaml:"volumes"`
}

type composeServices struct {
	Caddy   composeService `yaml:"caddy"`
	Redis   composeService `yaml:"redis"`
	Searxng composeService `yaml:"searxng"`
}

type composeService struct {
	ContainerName string   `yaml:"container_name"`
	Image         string   `yaml:"image"`
	Restart       string   `yaml:"restart"`
	Networks      []string `yaml:"networks"`
	Ports         []string `yaml:"ports,omitempty"`
	Volumes       []string `yaml:"volumes,omitempty"`
	Environment   []string `yaml:"environment,omitempty"`
	CapDrop       []string `yaml:"cap_drop,omitempty"`
	CapAdd        []string `yaml:"cap_add,omitempty"`
	DependsOn     []string `yaml:"depends_on,omitempty"`
}

type composeNetwork struct{}

// PortMappingPatch adds one host-to-container port mapping to a service
// in the compose document. Applying it to a document that already has
// the mapping is a no-op.
type PortMappingPatch struct {
	Service string
	Mapping string
}

func buildCompose(cfg Config) composeFile {
	net := []string{"searxng"}
	return composeFile{
		Services: composeServices{
			Caddy: composeService{
				ContainerName: "caddy",
				Image:         cfg.Images.Caddy,
				Restart:       "unless-stopped",
				Networks:      net,
				Ports:         []string{"80:80", "443:443", "443:443/udp"},
				Volumes: []string{
					"./Caddyfile:/etc/caddy/Caddyfile:ro",
					"caddy-data:/data",
					"caddy-config:/config",
				},
				CapDrop: []string{"ALL"},
				CapAdd:  []string{"NET_BIND_SERVICE"},
			},
			Redis: composeService{
				ContainerName: "redis",
				Image:         cfg.Images.Redis,
				Restart:       "unless-stopped",
				Networks:      net,
				Volumes:       []string{"valkey-data:/data"},
				CapDrop:       []string{"ALL"},
				CapAdd:        []string{"SETGID", "SETUID", "DAC_OVERRIDE"},
			},
			Searxng: composeService{
				ContainerName: "searxng",
				Image:         cfg.Images.Searxng,
				Restart:       "unless-stopped",
				Networks:      net,
				Volumes:       []string{"./searxng:/etc/searxng:rw"},
				Environment: []string{
					"SEARXNG_HOSTNAME=${SEARXNG_HOSTNAME}",
					"SEARXNG_BASE_URL=${SEARXNG_BASE_URL}",
				},
				CapDrop:   []string{"ALL"},
				CapAdd:    []string{"CHOWN", "SETGID", "SETUID"},
				DependsOn: []string{"redis"},
			},
		},
		Networks: map[string]composeNetwork{"searxng": {}},
		Volumes: map[string]composeNetwork{
			"caddy-data": {}, "caddy-config": {}, "valkey-data": {},
		},
	}
}

func renderCompose(c composeFile) ([]byte, error) {
	body, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal compose file: %w", err)
	}
	head := "# Generated by searxup. Regenerate instead of editing.\n"
	return append([]byte(head), body...), nil
}

// Apply inserts the patch's port mapping into doc. The document is
// parsed generically so the patch also works on a compose file written
// by an earlier run or edited by hand.
func (p PortMappingPatch) Apply(doc []byte) ([]byte, error) {
	var root map[string]any
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("parse compose file: %w", err)
	}

	services, ok := root["services"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("compose file has no services section")
	}
	service, ok := services[p.Service].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("compose file has no %s service", p.Service)
	}

	var ports []string
	if raw, exists := service["ports"].([]any); exists {
		for _, entry := range raw {
			ports = append(ports, fmt.Sprint(entry))
		}
	}
	if lo.Contains(ports, p.Mapping) {
		return doc, nil
	}
	service["ports"] = append(lo.ToAnySlice(ports), p.Mapping)

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshal compose file: %w", err)
	}
	return out, nil
}
