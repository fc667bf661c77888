// Package config loads and validates the kvsvcd process configuration:
// a YAML file with environment overrides, checked against an embedded
// CUE schema before the service is allowed to start listening.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// ServiceConfig is the full process configuration for kvsvcd. json
// tags (not just yaml ones) are required so cuelang.org/go's struct
// encoder, which reads json tags, lines field names up with
// schema.cue's.
type ServiceConfig struct {
	ListenAddr       string   `yaml:"listen_addr" json:"listen_addr"`
	DBPath           string   `yaml:"db_path" json:"db_path"`
	LogDir           string   `yaml:"log_dir" json:"log_dir"`
	BearerToken      string   `yaml:"bearer_token" json:"bearer_token"`
	DefaultListLimit int      `yaml:"default_list_limit" json:"default_list_limit"`
	MaxListLimit     int      `yaml:"max_list_limit" json:"max_list_limit"`
	MaxBodyBytes     int64    `yaml:"max_body_bytes" json:"max_body_bytes"`
	CORSOrigins      []string `yaml:"cors_origins" json:"cors_origins"`
}

// defaults mirrors the values documented for fields a config file is
// allowed to omit.
func defaults() ServiceConfig {
	return ServiceConfig{
		LogDir:           "",
		DefaultListLimit: 100,
		MaxListLimit:     1000,
		MaxBodyBytes:     1 << 20,
		CORSOrigins:      []string{},
	}
}

// Load reads path as YAML, layers environment overrides of the form
// KVSVC_<FIELD> on top, and validates the result against the embedded
// CUE schema. Unknown YAML fields are rejected to catch typos early.
func Load(path string) (*ServiceConfig, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides lets a deployment override a handful of
// operationally sensitive fields without editing the checked-in
// config file.
func applyEnvOverrides(cfg *ServiceConfig) {
	if v, ok := os.LookupEnv("KVSVC_LISTEN_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("KVSVC_BEARER_TOKEN"); ok && v != "" {
		cfg.BearerToken = v
	}
	if v, ok := os.LookupEnv("KVSVC_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
}

// Validate checks cfg against the embedded CUE schema: listen address
// shape, nonempty token/path, and the limit ordering
// default_list_limit <= max_list_limit <= 1000.
func Validate(cfg *ServiceConfig) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile embedded schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#ServiceConfig"))
	if !def.Exists() {
		return fmt.Errorf("embedded schema missing #ServiceConfig definition")
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
