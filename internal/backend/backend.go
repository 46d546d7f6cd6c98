package backend

import "context"

// TextGenerationBackend turns a prompt into generated text.
// Implementations must honor ctx cancellation where the runtime allows it.
type TextGenerationBackend interface {
	// Generate runs one completion for prompt using the given sampling parameters.
	Generate(ctx context.Context, prompt string, sampling SamplingConfig) (string, error)
	// Name identifies the backend variant (llama, llama-server, remote, mock).
	Name() string
	// Close releases any resources held by the backend.
	Close() error
}

// SamplingConfig captures decoding-time controls passed to the runtime.
// Zero values mean "use the runtime default".
type SamplingConfig struct {
	MaxLength          int     `json:"max_length" yaml:"max_length" toml:"max_length"`
	Temperature        float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	DoSample           bool    `json:"do_sample" yaml:"do_sample" toml:"do_sample"`
	TopP               float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	RepetitionPenalty  float64 `json:"repetition_penalty" yaml:"repetition_penalty" toml:"repetition_penalty"`
	NumReturnSequences int     `json:"num_return_sequences" yaml:"num_return_sequences" toml:"num_return_sequences"`
}

// effectiveTemperature returns 0 (greedy) when sampling is disabled.
func (s SamplingConfig) effectiveTemperature() float64 {
	if !s.DoSample {
		return 0
	}
	return s.Temperature
}

// Kind names a backend variant in configuration.
type Kind string

const (
	KindLlama       Kind = "llama"
	KindLlamaServer Kind = "llama-server"
	KindRemote      Kind = "remote"
	KindMock        Kind = "mock"
)
