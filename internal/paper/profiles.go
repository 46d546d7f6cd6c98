package paper

import (
	"fmt"

	"paperd/internal/backend"
	"paperd/internal/prompt"
)

// Default decoding parameters shared by every task.
const (
	DefaultTemperature        = 0.7
	DefaultTopP               = 0.9
	DefaultRepetitionPenalty  = 1.2
	DefaultNumReturnSequences = 1
)

// defaultMaxLength caps generated tokens per task.
var defaultMaxLength = map[prompt.TaskKind]int{
	prompt.TaskOutline:          1000,
	prompt.TaskAbstract:         300,
	prompt.TaskSection:          600,
	prompt.TaskLiteratureReview: 1000,
	prompt.TaskKeyPoints:        300,
}

// Profiles maps each task to the sampling parameters used for it.
type Profiles map[prompt.TaskKind]backend.SamplingConfig

// DefaultProfiles returns a fresh copy of the built-in sampling profiles.
func DefaultProfiles() Profiles {
	p := make(Profiles, len(defaultMaxLength))
	for kind, n := range defaultMaxLength {
		p[kind] = backend.SamplingConfig{
			MaxLength:          n,
			Temperature:        DefaultTemperature,
			DoSample:           true,
			TopP:               DefaultTopP,
			RepetitionPenalty:  DefaultRepetitionPenalty,
			NumReturnSequences: DefaultNumReturnSequences,
		}
	}
	return p
}

// SamplingOverride holds the sampling fields set for one task in
// configuration. Nil fields keep the default, so an explicit zero such as
// `temperature: 0` or `do_sample: false` is honored.
type SamplingOverride struct {
	MaxLength          *int     `json:"max_length,omitempty" yaml:"max_length" toml:"max_length"`
	Temperature        *float64 `json:"temperature,omitempty" yaml:"temperature" toml:"temperature"`
	DoSample           *bool    `json:"do_sample,omitempty" yaml:"do_sample" toml:"do_sample"`
	TopP               *float64 `json:"top_p,omitempty" yaml:"top_p" toml:"top_p"`
	RepetitionPenalty  *float64 `json:"repetition_penalty,omitempty" yaml:"repetition_penalty" toml:"repetition_penalty"`
	NumReturnSequences *int     `json:"num_return_sequences,omitempty" yaml:"num_return_sequences" toml:"num_return_sequences"`
}

// Validate rejects values no runtime accepts.
func (o SamplingOverride) Validate() error {
	switch {
	case o.MaxLength != nil && *o.MaxLength <= 0:
		return fmt.Errorf("max_length must be > 0")
	case o.Temperature != nil && *o.Temperature < 0:
		return fmt.Errorf("temperature must be >= 0")
	case o.TopP != nil && (*o.TopP < 0 || *o.TopP > 1):
		return fmt.Errorf("top_p must be within [0, 1]")
	case o.RepetitionPenalty != nil && *o.RepetitionPenalty < 0:
		return fmt.Errorf("repetition_penalty must be >= 0")
	case o.NumReturnSequences != nil && *o.NumReturnSequences <= 0:
		return fmt.Errorf("num_return_sequences must be > 0")
	}
	return nil
}

// Apply returns s with the fields present in o replaced.
func (o SamplingOverride) Apply(s backend.SamplingConfig) backend.SamplingConfig {
	if o.MaxLength != nil {
		s.MaxLength = *o.MaxLength
	}
	if o.Temperature != nil {
		s.Temperature = *o.Temperature
	}
	if o.DoSample != nil {
		s.DoSample = *o.DoSample
	}
	if o.TopP != nil {
		s.TopP = *o.TopP
	}
	if o.RepetitionPenalty != nil {
		s.RepetitionPenalty = *o.RepetitionPenalty
	}
	if o.NumReturnSequences != nil {
		s.NumReturnSequences = *o.NumReturnSequences
	}
	return s
}

// Overrides maps tasks to their sampling overrides.
type Overrides map[prompt.TaskKind]SamplingOverride

// Merge applies override on top of p and returns the result. p is not modified.
func (p Profiles) Merge(override Overrides) Profiles {
	out := make(Profiles, len(p))
	for k, v := range p {
		out[k] = v
	}
	for kind, o := range override {
		base, ok := out[kind]
		if !ok {
			base = DefaultProfiles()[kind]
		}
		out[kind] = o.Apply(base)
	}
	return out
}

// For returns the profile for kind, falling back to the defaults.
func (p Profiles) For(kind prompt.TaskKind) backend.SamplingConfig {
	if s, ok := p[kind]; ok {
		return s
	}
	return DefaultProfiles()[kind]
}
