package config

import (
	"time"

	"paperd/internal/backend"
)

// Defaults for unset fields.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRequestTimeout  = 10 * time.Minute
	DefaultShutdownTimeout = 5 * time.Second
	DefaultModelsDir       = "~/models/llm"
	DefaultBackendTimeout  = 120 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultLlamaServerURL  = "http://127.0.0.1:8081"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

// Default returns a fully populated configuration.
func Default() Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields in place.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	b := &cfg.Backend
	if b.Kind == "" {
		b.Kind = string(backend.KindMock)
	}
	if b.ModelsDir == "" {
		b.ModelsDir = DefaultModelsDir
	}
	if b.TokenEnv == "" {
		b.TokenEnv = backend.DefaultTokenEnv
		if kind, _ := backend.ParseKind(b.Kind); kind == backend.KindLlamaServer {
			b.TokenEnv = backend.DefaultLlamaServerKeyEnv
		}
	}
	if b.URL == "" {
		switch kind, _ := backend.ParseKind(b.Kind); kind {
		case backend.KindRemote:
			b.URL = backend.DefaultRemoteURL
		case backend.KindLlamaServer:
			b.URL = DefaultLlamaServerURL
		}
	}
	if b.Timeout <= 0 {
		b.Timeout = Duration(DefaultBackendTimeout)
	}
	if b.ConnectTimeout <= 0 {
		b.ConnectTimeout = Duration(DefaultConnectTimeout)
	}

	if cfg.Paper.Concurrency <= 0 {
		cfg.Paper.Concurrency = 1
	}
	if cfg.Paper.StripPrompt == nil {
		t := true
		cfg.Paper.StripPrompt = &t
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
