//go:build llama

package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// llamaBackend owns an in-process llama.cpp model. Predict is not reentrant;
// callers share it through a Handle, which admits one generation at a time.
type llamaBackend struct {
	model     *llama.LLama
	modelPath string
	threads   int
	opts      LlamaOptions
}

// NewLlama loads the GGUF model at opts.ModelPath into memory, offloading
// opts.GPULayers layers to the accelerator when one is available.
func NewLlama(opts LlamaOptions) (TextGenerationBackend, error) {
	path := strings.TrimSpace(opts.ModelPath)
	if path == "" {
		return nil, unavailable(string(KindLlama), opts.ModelName, errors.New("model path is empty"))
	}
	mo := []llama.ModelOption{
		llama.SetContext(opts.contextSize()),
	}
	if opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(opts.GPULayers))
	}
	start := time.Now()
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, unavailable(string(KindLlama), path, err)
	}
	opts.Logger.Info().Str("model", path).Int("gpu_layers", opts.GPULayers).Dur("dur", time.Since(start)).Msg("llama model loaded")
	return &llamaBackend{model: m, modelPath: path, threads: opts.threads(), opts: opts}, nil
}

func (b *llamaBackend) Name() string { return string(KindLlama) }

func (b *llamaBackend) Generate(ctx context.Context, prompt string, sampling SamplingConfig) (string, error) {
	if b.model == nil {
		return "", unavailable(b.Name(), b.modelPath, errors.New("llama model not initialized"))
	}
	// Stop token generation once ctx is done.
	b.model.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := b.model.Predict(prompt, predictOptions(sampling, b.threads)...)
	if ctx.Err() != nil {
		return "", generationFailed(b.Name(), ctx.Err())
	}
	if err != nil {
		return "", generationFailed(b.Name(), err)
	}
	return text, nil
}

func (b *llamaBackend) Close() error {
	if b.model != nil {
		b.model.Free()
		b.model = nil
	}
	return nil
}

func nonZero(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nonZeroF(v float64, def float32) float32 {
	if v > 0 {
		return float32(v)
	}
	return def
}

// predictOptions converts SamplingConfig into go-llama.cpp options.
func predictOptions(s SamplingConfig, threads int) []llama.PredictOption {
	temp := nonZeroF(s.effectiveTemperature(), llama.DefaultOptions.Temperature)
	if !s.DoSample {
		temp = 0
	}
	return []llama.PredictOption{
		llama.SetTokens(nonZero(s.MaxLength, llama.DefaultOptions.Tokens)),
		llama.SetThreads(nonZero(threads, 1)),
		llama.SetTopP(nonZeroF(s.TopP, llama.DefaultOptions.TopP)),
		llama.SetTemperature(temp),
		llama.SetPenalty(nonZeroF(s.RepetitionPenalty, llama.DefaultOptions.Penalty)),
	}
}
