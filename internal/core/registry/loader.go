package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

// fileConfig is the YAML shape accepted by Load. Unlisted categories keep
// their defaults; listed fields replace the default value wholesale.
type fileConfig struct {
	DefaultRecipients []string                    `yaml:"default_recipients"`
	Categories        map[string]categoryOverride `yaml:"categories"`
}

type categoryOverride struct {
	Label          string   `yaml:"label"`
	Recipients     []string `yaml:"recipients"`
	Required       []string `yaml:"required"`
	DriverRequired []string `yaml:"driver_required"`
	Optional       []string `yaml:"optional"`
}

// Load builds a registry from the defaults plus an optional YAML override file.
func Load(path string) (*Registry, error) {
	if path == "" {
		return New(Defaults()...)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category config: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Registry, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode category config: %w", err)
	}

	descriptors := Defaults()
	byCategory := make(map[domain.Category]int, len(descriptors))
	for i, d := range descriptors {
		byCategory[d.Category] = i
		if len(cfg.DefaultRecipients) > 0 {
			descriptors[i].Recipients = append([]string(nil), cfg.DefaultRecipients...)
		}
	}

	for name, override := range cfg.Categories {
		idx, ok := byCategory[domain.Category(name)]
		if !ok {
			return nil, fmt.Errorf("category config: unknown category %q", name)
		}
		d := &descriptors[idx]
		if override.Label != "" {
			d.Label = override.Label
		}
		if override.Recipients != nil {
			d.Recipients = override.Recipients
		}
		if override.Required != nil {
			d.Required = toTypes(override.Required)
		}
		if override.DriverRequired != nil {
			d.DriverRequired = toTypes(override.DriverRequired)
		}
		if override.Optional != nil {
			d.Optional = toTypes(override.Optional)
		}
	}

	for i := range descriptors {
		recipients, err := domain.MergeEmails(descriptors[i].Recipients)
		if err != nil {
			return nil, fmt.Errorf("category config %s: %w", descriptors[i].Category, err)
		}
		descriptors[i].Recipients = recipients
	}
	return New(descriptors...)
}

func toTypes(values []string) []domain.DocumentType {
	out := make([]domain.DocumentType, 0, len(values))
	for _, v := range values {
		out = append(out, domain.DocumentType(v))
	}
	return out
}
