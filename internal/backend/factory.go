package backend

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"paperd/internal/common/fsutil"
	"paperd/internal/registry"
)

// Options selects and configures one backend variant.
type Options struct {
	Kind Kind
	// Model is a registry name or *.gguf path (llama), a model id (llama-server),
	// or informational only (remote, where URL names the model).
	Model     string
	ModelsDir string
	// URL is the hosted model URL (remote) or the server base URL (llama-server).
	URL            string
	Token          string
	TokenEnv       string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	ContextSize    int
	Threads        int
	GPULayers      int
	MaxQueueDepth  int
	MaxWait        time.Duration
	Mock           MockOptions
	Logger         zerolog.Logger
}

// ParseKind normalizes a configured backend name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "llama", "local", "llama.cpp":
		return KindLlama, nil
	case "llama-server", "llama_server", "server":
		return KindLlamaServer, nil
	case "remote", "hf", "huggingface", "api":
		return KindRemote, nil
	case "mock", "":
		return KindMock, nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", s)
	}
}

// New returns an unloaded Handle for the selected variant.
func New(opts Options) (*Handle, error) {
	kind, err := ParseKind(string(opts.Kind))
	if err != nil {
		return nil, err
	}
	opts.Kind = kind
	model := opts.Model
	if kind == KindRemote && model == "" {
		model = opts.URL
		if model == "" {
			model = DefaultRemoteURL
		}
	}
	return NewHandle(HandleConfig{
		Kind:          kind,
		Model:         model,
		Factory:       opts.factory(),
		MaxQueueDepth: opts.MaxQueueDepth,
		MaxWait:       opts.MaxWait,
		Logger:        opts.Logger,
	}), nil
}

func (o Options) factory() Factory {
	switch o.Kind {
	case KindLlama:
		return func() (TextGenerationBackend, error) {
			path, err := o.resolveModelPath()
			if err != nil {
				return nil, unavailable(string(KindLlama), o.Model, err)
			}
			return NewLlama(LlamaOptions{
				ModelName:   o.Model,
				ModelPath:   path,
				ContextSize: o.ContextSize,
				Threads:     o.Threads,
				GPULayers:   o.GPULayers,
				Logger:      o.Logger,
			})
		}
	case KindLlamaServer:
		return func() (TextGenerationBackend, error) {
			return NewLlamaServer(LlamaServerOptions{
				BaseURL:        o.URL,
				APIKey:         o.Token,
				APIKeyEnv:      o.TokenEnv,
				Model:          o.Model,
				Timeout:        o.Timeout,
				ConnectTimeout: o.ConnectTimeout,
				Logger:         o.Logger,
			})
		}
	case KindRemote:
		return func() (TextGenerationBackend, error) {
			return NewRemote(RemoteOptions{
				URL:            o.URL,
				Token:          o.Token,
				TokenEnv:       o.TokenEnv,
				Timeout:        o.Timeout,
				ConnectTimeout: o.ConnectTimeout,
				Logger:         o.Logger,
			})
		}
	default:
		return func() (TextGenerationBackend, error) {
			return NewMock(o.Mock), nil
		}
	}
}

// resolveModelPath accepts a direct *.gguf path or looks the name up in ModelsDir.
func (o Options) resolveModelPath() (string, error) {
	name := strings.TrimSpace(o.Model)
	if name == "" {
		return "", fmt.Errorf("no model configured")
	}
	if strings.EqualFold(filepath.Ext(name), ".gguf") {
		p, err := fsutil.ExpandHome(name)
		if err != nil {
			return "", err
		}
		if fsutil.PathExists(p) {
			return p, nil
		}
	}
	models, err := registry.LoadDir(o.ModelsDir)
	if err != nil {
		return "", fmt.Errorf("load models dir: %w", err)
	}
	m, err := registry.Resolve(models, name)
	if err != nil {
		return "", err
	}
	return m.Path, nil
}
