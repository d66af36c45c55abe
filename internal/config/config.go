// Package config loads the optional tool configuration. Precedence is
// flags > environment > fa40.yaml > defaults; this package covers the last
// three (godotenv has already populated the environment by the time Load
// runs).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "fa40.yaml"

type Config struct {
	// Backends is the extraction backend order; earlier entries win ties
	// under the first-wins merge policy.
	Backends []string `yaml:"backends"`
	// MergePolicy is "first" or "last".
	MergePolicy string `yaml:"merge_policy"`
	// Strict makes `fa40 header --validate` exit nonzero on missing
	// required fields. The header document is written either way.
	Strict bool `yaml:"strict"`
	// SchemaDir holds the FA 4.0 section schema files.
	SchemaDir string `yaml:"schema_dir"`
}

func Default() Config {
	return Config{
		Backends:    []string{"imaging", "tiffdir", "exifscan"},
		MergePolicy: "first",
		SchemaDir:   "schema",
	}
}

// Load resolves the effective configuration. A missing default file is not
// an error; a named file that cannot be read or parsed is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		slog.Debug("config loaded", "path", path)
	case explicit:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FA40_MERGE_POLICY"); v != "" {
		cfg.MergePolicy = v
	}
	if v := os.Getenv("FA40_SCHEMA_DIR"); v != "" {
		cfg.SchemaDir = v
	}
	if v := os.Getenv("FA40_STRICT"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Strict = strict
		}
	}
}
