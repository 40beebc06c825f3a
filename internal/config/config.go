package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mkock/bootseq/v3"
)

// File represents the top-level structure of a sequence file. It describes a set of simulated
// components, their dependencies and how the sequence should be run.
//
// Example YAML structure:
//
//	name: api
//	sequence: (postgres : redis) > api
//	workers: 4
//	timeout: 5s
//	log:
//	  level: debug
//	  format: json
//	components:
//	  - name: postgres
//	    start: {duration: 200ms}
//	    stop: {duration: 50ms}
//	  - name: redis
//	    start: {duration: 20ms, fail: true}
//	  - name: api
//	    depends_on:
//	      - name: postgres
//	      - name: redis
//	        keep_alive: false
type File struct {
	// Name is the name of the boot sequence, used in logs and metrics
	Name string `yaml:"name"`

	// Sequence is an optional formula whose edges are added to the explicit depends_on entries
	Sequence string `yaml:"sequence"`

	// Workers bounds the number of actions running at once, 0 means unbounded
	Workers int `yaml:"workers"`

	// Timeout bounds each phase, 0 means no limit
	Timeout time.Duration `yaml:"timeout"`

	Log LogConfig `yaml:"log"`

	Components []ComponentConfig `yaml:"components"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ComponentConfig describes a single simulated component.
type ComponentConfig struct {
	// Name must be unique across all components in the file
	Name string `yaml:"name"`

	Start ActionConfig `yaml:"start"`
	Stop  ActionConfig `yaml:"stop"`

	DependsOn []DependencyConfig `yaml:"depends_on"`
}

// ActionConfig describes how a simulated action behaves.
type ActionConfig struct {
	// Duration is how long the action takes
	Duration time.Duration `yaml:"duration"`

	// Fail makes the action return an error after Duration has passed
	Fail bool `yaml:"fail"`
}

// DependencyConfig is a single dependency edge. KeepAlive defaults to true.
type DependencyConfig struct {
	Name      string `yaml:"name"`
	KeepAlive *bool  `yaml:"keep_alive"`
}

// IsKeepAlive reports whether the dependency must outlive the dependent.
func (d DependencyConfig) IsKeepAlive() bool {
	return d.KeepAlive == nil || *d.KeepAlive
}

// ConfigError represents a validation failure of a sequence file.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}

var _ error = &ConfigError{}

var validLevels = []string{"debug", "info", "warn", "error"}
var validFormats = []string{"text", "json"}

// Validate checks that the File is valid.
// Returns descriptive errors for validation failures.
func (f *File) Validate() error {
	if len(f.Components) == 0 {
		return NewConfigError("at least one component is required")
	}

	if f.Workers < 0 {
		return NewConfigError("workers must not be negative")
	}

	if f.Timeout < 0 {
		return NewConfigError("timeout must not be negative")
	}

	if f.Log.Level != "" && !slices.Contains(validLevels, f.Log.Level) {
		return NewConfigError(fmt.Sprintf(
			"invalid log level: %q (must be one of: %s)",
			f.Log.Level, strings.Join(validLevels, ", "),
		))
	}

	if f.Log.Format != "" && !slices.Contains(validFormats, f.Log.Format) {
		return NewConfigError(fmt.Sprintf(
			"invalid log format: %q (must be one of: %s)",
			f.Log.Format, strings.Join(validFormats, ", "),
		))
	}

	// Track component names for uniqueness and reference checks
	seenNames := make(map[string]bool)
	for i, c := range f.Components {
		if c.Name == "" {
			return NewConfigError(fmt.Sprintf("component[%d]: name is required", i))
		}
		if seenNames[c.Name] {
			return NewConfigError(fmt.Sprintf("component[%d]: duplicate name %q", i, c.Name))
		}
		seenNames[c.Name] = true

		if c.Start.Duration < 0 || c.Stop.Duration < 0 {
			return NewConfigError(fmt.Sprintf("component[%d] (%s): durations must not be negative", i, c.Name))
		}
	}

	for i, c := range f.Components {
		for _, dep := range c.DependsOn {
			if dep.Name == c.Name {
				return NewConfigError(fmt.Sprintf("component[%d] (%s): depends on itself", i, c.Name))
			}
			if !seenNames[dep.Name] {
				return NewConfigError(fmt.Sprintf("component[%d] (%s): unknown dependency %q", i, c.Name, dep.Name))
			}
		}
	}

	if f.Sequence != "" {
		formula, err := bootseq.ParseFormula(f.Sequence)
		if err != nil {
			return fmt.Errorf("sequence: %w", err)
		}
		for _, name := range formula.Names() {
			if !seenNames[name] {
				return NewConfigError(fmt.Sprintf("sequence: unknown component %q", name))
			}
		}
	}

	if _, err := f.Order(); err != nil {
		return err
	}

	return nil
}

// Edges returns the dependency edges of every component: the explicit depends_on entries followed
// by the edges implied by the sequence formula. Formula edges always keep their dependency alive and
// never duplicate an explicit entry.
func (f *File) Edges() (map[string][]DependencyConfig, error) {
	edges := make(map[string][]DependencyConfig, len(f.Components))
	for _, c := range f.Components {
		edges[c.Name] = append([]DependencyConfig(nil), c.DependsOn...)
	}

	if f.Sequence == "" {
		return edges, nil
	}

	formula, err := bootseq.ParseFormula(f.Sequence)
	if err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}

	for _, name := range formula.Names() {
		for _, dep := range formula.Dependencies()[name] {
			if !hasEdge(edges[name], dep) {
				edges[name] = append(edges[name], DependencyConfig{Name: dep})
			}
		}
	}

	return edges, nil
}

// ErrCycle is returned by Order when the dependency edges form a cycle.
var ErrCycle = errors.New("dependency cycle")

// Order returns the component names in an order where every component follows all of its
// dependencies. Ties keep the order of the file.
func (f *File) Order() ([]string, error) {
	edges, err := f.Edges()
	if err != nil {
		return nil, err
	}

	placed := make(map[string]bool, len(f.Components))
	order := make([]string, 0, len(f.Components))
	for len(order) < len(f.Components) {
		progress := false
		for _, c := range f.Components {
			if placed[c.Name] {
				continue
			}
			ready := true
			for _, dep := range edges[c.Name] {
				if !placed[dep.Name] {
					ready = false
					break
				}
			}
			if ready {
				placed[c.Name] = true
				order = append(order, c.Name)
				progress = true
			}
		}

		if !progress {
			var rest []string
			for _, c := range f.Components {
				if !placed[c.Name] {
					rest = append(rest, c.Name)
				}
			}
			return nil, fmt.Errorf("%w between %s", ErrCycle, strings.Join(rest, ", "))
		}
	}

	return order, nil
}

func hasEdge(deps []DependencyConfig, name string) bool {
	return slices.ContainsFunc(deps, func(d DependencyConfig) bool { return d.Name == name })
}
