//go:build !llama

package backend

// Compiled when the 'llama' build tag is NOT set, keeping default builds CGO-free.
// The real backend lives in llama.go.

const llamaBuilt = false

// NewLlama refuses to load a model without the 'llama' build tag.
func NewLlama(opts LlamaOptions) (TextGenerationBackend, error) {
	return nil, &ModelUnavailableError{
		Backend: string(KindLlama),
		Model:   opts.ModelName,
		Err:     errLlamaNotBuilt,
	}
}
