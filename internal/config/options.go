package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"paperd/internal/backend"
	"paperd/internal/paper"
	"paperd/internal/prompt"
)

// Validate reports settings that cannot work at runtime.
func (c Config) Validate() error {
	if _, err := backend.ParseKind(c.Backend.Kind); err != nil {
		return err
	}
	if _, err := c.SamplingOverrides(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	if c.Paper.Concurrency < 0 {
		return fmt.Errorf("paper.concurrency must be >= 0")
	}
	return nil
}

// SamplingOverrides keys the sampling section by task kind and validates it.
func (c Config) SamplingOverrides() (paper.Overrides, error) {
	if len(c.Sampling) == 0 {
		return nil, nil
	}
	out := make(paper.Overrides, len(c.Sampling))
	for key, o := range c.Sampling {
		kind, err := prompt.ParseTaskKind(key)
		if err != nil {
			return nil, fmt.Errorf("sampling: %w", err)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("sampling.%s: %w", key, err)
		}
		out[kind] = o
	}
	return out, nil
}

// BackendOptions maps the backend section onto backend.Options.
func (c Config) BackendOptions(log zerolog.Logger) backend.Options {
	b := c.Backend
	return backend.Options{
		Kind:           backend.Kind(b.Kind),
		Model:          b.Model,
		ModelsDir:      b.ModelsDir,
		URL:            b.URL,
		TokenEnv:       b.TokenEnv,
		Timeout:        b.Timeout.D(),
		ConnectTimeout: b.ConnectTimeout.D(),
		ContextSize:    b.ContextSize,
		Threads:        b.Threads,
		GPULayers:      b.GPULayers,
		MaxQueueDepth:  b.MaxQueueDepth,
		MaxWait:        b.MaxWait.D(),
		Logger:         log,
	}
}

// PaperOptions maps the sampling and paper sections onto paper.Options.
func (c Config) PaperOptions(log zerolog.Logger) (paper.Options, error) {
	sampling, err := c.SamplingOverrides()
	if err != nil {
		return paper.Options{}, err
	}
	keep := c.Paper.StripPrompt != nil && !*c.Paper.StripPrompt
	return paper.Options{
		Sampling:    sampling,
		Concurrency: c.Paper.Concurrency,
		KeepPrompt:  keep,
		Logger:      log,
	}, nil
}
