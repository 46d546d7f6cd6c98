package backend

import (
	"runtime"

	"github.com/rs/zerolog"
)

const defaultContextSize = 4096

// LlamaOptions configures the in-process llama.cpp variant.
type LlamaOptions struct {
	// ModelName is the configured name, kept for error messages.
	ModelName string
	// ModelPath is the resolved *.gguf file.
	ModelPath   string
	ContextSize int
	Threads     int
	GPULayers   int
	Logger      zerolog.Logger
}

func (o LlamaOptions) contextSize() int {
	if o.ContextSize > 0 {
		return o.ContextSize
	}
	return defaultContextSize
}

func (o LlamaOptions) threads() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return runtime.NumCPU()
}

// LlamaSupported reports whether this binary was built with the llama tag.
func LlamaSupported() bool { return llamaBuilt }
