package static

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

// MappingsFile is the YAML bootstrap file format:
//
//	mappings:
//	  - host: dev.shop.localhost
//	    shopId: shop_dev
//	    canonicalHost: dev.shop.localhost
//	    defaultLocale: en
//	    mode: active
type MappingsFile struct {
	Mappings []domain.HostMapping `yaml:"mappings"`
}

// Loader reads and validates the static mappings YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads, parses, normalizes and validates the mappings file.
// Any invalid entry fails the whole load so a bad edit cannot silently
// drop tenants.
func (l *Loader) Load() ([]domain.HostMapping, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read static mappings file: %w", err)
	}

	var file MappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse static mappings yaml: %w", err)
	}

	for i := range file.Mappings {
		file.Mappings[i].Normalize()
		if err := file.Mappings[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid static mapping %q: %w", file.Mappings[i].Host, err)
		}
	}
	return file.Mappings, nil
}

// ParseEnvJSON parses the env-supplied JSON map of host -> mapping
// fields used for local/dev bootstrapping without a durable store. The
// object key doubles as the host when the value omits one.
func ParseEnvJSON(raw string) (map[string]*domain.HostMapping, error) {
	byHost := make(map[string]*domain.HostMapping)
	if raw == "" {
		return byHost, nil
	}

	var parsed map[string]domain.HostMapping
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse static mappings json: %w", err)
	}

	for host, m := range parsed {
		if m.Host == "" {
			m.Host = host
		}
		m.Normalize()
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("invalid static mapping %q: %w", host, err)
		}
		byHost[m.Host] = &m
	}
	return byHost, nil
}
