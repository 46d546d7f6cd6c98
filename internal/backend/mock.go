package backend

import (
	"context"
	"errors"
	"strings"
)

// MockOptions configures the deterministic offline backend.
type MockOptions struct {
	// EchoPrompt prefixes the output with the prompt, the way text-generation
	// pipelines return the full sequence.
	EchoPrompt bool
	// FailOn makes Generate fail for prompts containing this substring.
	FailOn string
}

type mockBackend struct {
	opts MockOptions
}

// NewMock returns a backend that produces a fixed completion derived from the
// prompt's final line. It never touches the network.
func NewMock(opts MockOptions) TextGenerationBackend {
	return &mockBackend{opts: opts}
}

func (m *mockBackend) Name() string { return string(KindMock) }

func (m *mockBackend) Close() error { return nil }

func (m *mockBackend) Generate(ctx context.Context, prompt string, sampling SamplingConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", generationFailed(m.Name(), err)
	}
	if m.opts.FailOn != "" && strings.Contains(prompt, m.opts.FailOn) {
		return "", generationFailed(m.Name(), errors.New("injected failure"))
	}
	label := lastLine(prompt)
	label = strings.TrimSuffix(label, ":")
	if label == "" {
		label = "text"
	}
	text := "Mock " + strings.ToLower(label) + " generated for this prompt."
	if m.opts.EchoPrompt {
		return prompt + "\n" + text, nil
	}
	return text, nil
}

func lastLine(s string) string {
	s = strings.TrimRight(s, " \n\t")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}
