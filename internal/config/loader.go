package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load loads and validates a sequence file using Koanf.
// Returns the parsed and validated File or an error.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Validation failure (missing or duplicate names, unknown dependencies, cycles, bad formula)
func Load(path string) (*File, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load sequence file %q: %w", path, err)
	}

	var cfg File
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse sequence file %q: %w", path, err)
	}

	if cfg.Name == "" {
		cfg.Name = "bootseq"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sequence file validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}
