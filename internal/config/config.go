package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ExamplesFileName is the success-example store inside the output directory.
const ExamplesFileName = "success_examples.json"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (STUDYCARD_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: STUDYCARD_ENDPOINT_URL -> endpoint_url, etc.
	if err := k.Load(env.Provider("STUDYCARD_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "STUDYCARD_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validBackends is the set of recognized backend values.
var validBackends = map[BackendType]bool{
	BackendLocal:  true,
	BackendRemote: true,
	BackendOpenAI: true,
}

// Validate checks that the configuration contains valid values. A remote
// backend with missing credentials is deliberately not an error here: the
// summarizer degrades to the local fallback at request time.
func (c *Config) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend %q: must be one of local, remote, openai", c.Backend)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.UploadDir == "" {
		return fmt.Errorf("upload_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}

	return nil
}

// ExamplesFile returns the path of the success-example store.
func (c *Config) ExamplesFile() string {
	return filepath.Join(c.OutputDir, ExamplesFileName)
}

// EnsureDirs creates the upload and output directories if they are missing.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.UploadDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
