package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLlamaServerKeyEnv is the variable llama.cpp's server reads its
// --api-key from.
const DefaultLlamaServerKeyEnv = "LLAMA_API_KEY"

// LlamaServerOptions configures the llama.cpp server variant.
type LlamaServerOptions struct {
	BaseURL string
	// APIKey is sent as a bearer token. When empty it is read from the
	// variable named by APIKeyEnv; an unset variable disables auth.
	APIKey         string
	APIKeyEnv      string
	Model          string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// llamaServerBackend talks to a running llama.cpp server over its
// OpenAI-compatible /v1/completions endpoint and concatenates streamed fragments.
type llamaServerBackend struct {
	baseURL    string
	apiKey     string
	model      string
	reqTimeout time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// NewLlamaServer constructs a server-backed backend.
func NewLlamaServer(opts LlamaServerOptions) (TextGenerationBackend, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, unavailable(string(KindLlamaServer), opts.Model, errors.New("base url is empty"))
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	reqTimeout := opts.Timeout
	if reqTimeout <= 0 {
		reqTimeout = defaultRemoteTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		env := opts.APIKeyEnv
		if env == "" {
			env = DefaultLlamaServerKeyEnv
		}
		key = strings.TrimSpace(os.Getenv(env))
	}
	// Timeout=0 here: every request carries a context deadline.
	return &llamaServerBackend{
		baseURL:    base,
		apiKey:     key,
		model:      strings.TrimSpace(opts.Model),
		reqTimeout: reqTimeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        opts.Logger,
	}, nil
}

func (b *llamaServerBackend) Name() string { return string(KindLlamaServer) }

func (b *llamaServerBackend) Close() error {
	if tr, ok := b.httpClient.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	return nil
}

// completionRequest is the payload for /v1/completions.
type completionRequest struct {
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	N           int     `json:"n,omitempty"`
	Stream      bool    `json:"stream"`
	// Not standard OpenAI; llama.cpp accepts it and other servers ignore it.
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

// streamChunk covers both completion ("text") and chat ("delta.content") chunk shapes.
type streamChunk struct {
	Choices []struct {
		Text  string `json:"text"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Content string `json:"content"`
}

func (b *llamaServerBackend) Generate(ctx context.Context, prompt string, sampling SamplingConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.reqTimeout)
	defer cancel()

	n := sampling.NumReturnSequences
	if n > 1 {
		// Only the first sequence is ever returned.
		n = 1
	}
	payload := completionRequest{
		Model:         b.model,
		Prompt:        prompt,
		MaxTokens:     sampling.MaxLength,
		Temperature:   sampling.effectiveTemperature(),
		TopP:          sampling.TopP,
		N:             n,
		Stream:        true,
		RepeatPenalty: sampling.RepetitionPenalty,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", generationFailed(b.Name(), err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", unavailable(b.Name(), b.model, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", generationFailed(b.Name(), ctx.Err())
		}
		if isUnreachable(err) {
			return "", unavailable(b.Name(), b.model, err)
		}
		return "", generationFailed(b.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("llama server http error: %s: %s", resp.Status, string(msg))
		if resp.StatusCode == http.StatusNotFound {
			return "", unavailable(b.Name(), b.model, err)
		}
		return "", generationFailed(b.Name(), err)
	}

	var out strings.Builder
	r := bufio.NewReader(resp.Body)
	for {
		line, readErr := r.ReadString('\n')
		frag, done := parseStreamLine(line, b.log)
		if done {
			break
		}
		out.WriteString(frag)
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return "", generationFailed(b.Name(), ctx.Err())
			}
			return "", generationFailed(b.Name(), readErr)
		}
	}
	return out.String(), nil
}

// parseStreamLine decodes one SSE line. done is true on the [DONE] sentinel.
func parseStreamLine(line string, log zerolog.Logger) (frag string, done bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(strings.ToLower(line), "data:") {
		return "", false
	}
	data := strings.TrimSpace(line[len("data:"):])
	if data == "[DONE]" {
		return "", true
	}
	var msg streamChunk
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		log.Warn().Str("line", line).Msg("llama server: unknown stream line")
		return "", false
	}
	if len(msg.Choices) > 0 {
		c := msg.Choices[0]
		if c.Text != "" {
			return c.Text, false
		}
		return c.Delta.Content, false
	}
	return msg.Content, false
}
