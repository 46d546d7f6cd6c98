package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides fields from PAPERD_* environment variables.
func ApplyEnv(cfg *Config) {
	setStr(&cfg.Server.Addr, "PAPERD_ADDR")
	setInt64(&cfg.Server.MaxBodyBytes, "PAPERD_MAX_BODY_BYTES")
	setDur(&cfg.Server.RequestTimeout, "PAPERD_REQUEST_TIMEOUT")
	if v := os.Getenv("PAPERD_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = SplitCSV(v)
	}

	setStr(&cfg.Backend.Kind, "PAPERD_BACKEND")
	setStr(&cfg.Backend.Model, "PAPERD_MODEL")
	setStr(&cfg.Backend.ModelsDir, "PAPERD_MODELS_DIR")
	setStr(&cfg.Backend.URL, "PAPERD_BACKEND_URL")
	setStr(&cfg.Backend.TokenEnv, "PAPERD_TOKEN_ENV")
	setDur(&cfg.Backend.Timeout, "PAPERD_BACKEND_TIMEOUT")
	setInt(&cfg.Backend.GPULayers, "PAPERD_GPU_LAYERS")
	setInt(&cfg.Backend.Threads, "PAPERD_THREADS")
	setInt(&cfg.Backend.MaxQueueDepth, "PAPERD_MAX_QUEUE_DEPTH")
	if v := os.Getenv("PAPERD_LAZY_LOAD"); v != "" {
		cfg.Backend.LazyLoad = parseBool(v)
	}

	setInt(&cfg.Paper.Concurrency, "PAPERD_PAPER_CONCURRENCY")
	if v := os.Getenv("PAPERD_STRIP_PROMPT"); v != "" {
		b := parseBool(v)
		cfg.Paper.StripPrompt = &b
	}

	setStr(&cfg.Log.Level, "PAPERD_LOG_LEVEL")
	setStr(&cfg.Log.Format, "PAPERD_LOG_FORMAT")
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDur(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			*dst = Duration(d)
		}
	}
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
