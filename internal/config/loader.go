package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"paperd/internal/paper"
)

// Duration is a time.Duration written as "90s" or "5m" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// D returns d as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// Config holds runtime parameters for the service and the CLI.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" toml:"server"`
	Backend BackendConfig `json:"backend" yaml:"backend" toml:"backend"`
	// Sampling overrides the per-task sampling profile, keyed by task kind
	// (outline, abstract, section, literature_review, key_points).
	Sampling map[string]paper.SamplingOverride `json:"sampling" yaml:"sampling" toml:"sampling"`
	Paper    PaperConfig                       `json:"paper" yaml:"paper" toml:"paper"`
	Log      LogConfig                         `json:"log" yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Addr            string   `json:"addr" yaml:"addr" toml:"addr"`
	MaxBodyBytes    int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	RequestTimeout  Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

type BackendConfig struct {
	Kind      string `json:"kind" yaml:"kind" toml:"kind"`
	Model     string `json:"model" yaml:"model" toml:"model"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	URL       string `json:"url" yaml:"url" toml:"url"`
	// TokenEnv names the environment variable holding the API token.
	TokenEnv       string   `json:"token_env" yaml:"token_env" toml:"token_env"`
	Timeout        Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	ConnectTimeout Duration `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`
	ContextSize    int      `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads        int      `json:"threads" yaml:"threads" toml:"threads"`
	GPULayers      int      `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	MaxQueueDepth  int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWait        Duration `json:"max_wait" yaml:"max_wait" toml:"max_wait"`
	// LazyLoad defers building the backend until the first request instead
	// of loading it when the server starts.
	LazyLoad bool `json:"lazy_load" yaml:"lazy_load" toml:"lazy_load"`
}

type PaperConfig struct {
	Concurrency int `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	// StripPrompt removes an echoed prompt prefix from generated text.
	// Unset means true.
	StripPrompt *bool `json:"strip_prompt" yaml:"strip_prompt" toml:"strip_prompt"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Resolve builds the effective configuration: the file at path (optional),
// then PAPERD_* environment overrides, then defaults for anything unset.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	return cfg, cfg.Validate()
}
