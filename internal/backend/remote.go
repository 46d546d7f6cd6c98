package backend

import (
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

// DefaultRemoteURL is the hosted summarization model used when none is configured.
const DefaultRemoteURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

// DefaultTokenEnv names the environment variable holding the bearer token.
const DefaultTokenEnv = "HF_API_TOKEN"

const (
	defaultRemoteTimeout  = 120 * time.Second
	defaultConnectTimeout = 10 * time.Second
	maxErrorBody          = 4096
)

// RemoteOptions configures the hosted inference API variant.
type RemoteOptions struct {
	URL            string
	Token          string
	TokenEnv       string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// remoteBackend posts prompts to a hosted inference endpoint.
type remoteBackend struct {
	url        string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

type remoteRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters remoteParameters `json:"parameters"`
	Options    remoteOptions    `json:"options"`
}

type remoteParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type remoteOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type remoteResult struct {
	SummaryText   *string `json:"summary_text"`
	GeneratedText *string `json:"generated_text"`
}

type remoteErrorBody struct {
	Error *string `json:"error"`
}

// NewRemote constructs the hosted API variant. The bearer token is taken from
// opts.Token, falling back to the environment variable named by opts.TokenEnv.
func NewRemote(opts RemoteOptions) (TextGenerationBackend, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = DefaultRemoteURL
	}
	token := opts.Token
	if token == "" {
		env := opts.TokenEnv
		if env == "" {
			env = DefaultTokenEnv
		}
		token = os.Getenv(env)
		if token == "" {
			return nil, unavailable(string(KindRemote), url, fmt.Errorf("%s is not set", env))
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Deadlines are carried by the request context, see Generate.
	return &remoteBackend{
		url:        url,
		token:      token,
		timeout:    timeout,
		httpClient: &http.Client{Transport: tr},
		log:        opts.Logger,
	}, nil
}

func (r *remoteBackend) Name() string { return string(KindRemote) }

func (r *remoteBackend) Close() error {
	if tr, ok := r.httpClient.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	return nil
}

func (r *remoteBackend) Generate(ctx context.Context, prompt string, sampling SamplingConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(remoteRequest{
		Inputs:     prompt,
		Parameters: remoteParameters{MaxNewTokens: sampling.MaxLength},
		Options:    remoteOptions{WaitForModel: true},
	})
	if err != nil {
		return "", generationFailed(r.Name(), fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", unavailable(r.Name(), r.url, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", generationFailed(r.Name(), ctx.Err())
		}
		if isUnreachable(err) {
			return "", unavailable(r.Name(), r.url, err)
		}
		return "", generationFailed(r.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", generationFailed(r.Name(), ctx.Err())
		}
		return "", generationFailed(r.Name(), fmt.Errorf("read response: %w", err))
	}
	r.log.Debug().Str("backend", r.Name()).Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("remote response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("http %s: %s", resp.Status, truncate(respBody, maxErrorBody))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return "", unavailable(r.Name(), r.url, err)
		}
		return "", generationFailed(r.Name(), err)
	}
	text, err := parseRemoteResponse(respBody)
	if err != nil {
		return "", generationFailed(r.Name(), err)
	}
	return text, nil
}

// parseRemoteResponse extracts summary_text (preferred) or generated_text from
// the first element of the response array. An object with an error field is a failure.
func parseRemoteResponse(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", errors.New("empty response body")
	}
	switch trimmed[0] {
	case '{':
		var eb remoteErrorBody
		if err := json.Unmarshal(trimmed, &eb); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if eb.Error != nil {
			return "", fmt.Errorf("remote error: %s", *eb.Error)
		}
		return "", errors.New("unexpected response object")
	case '[':
		var results []remoteResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(results) == 0 {
			return "", errors.New("empty response array")
		}
		first := results[0]
		if first.SummaryText != nil {
			return *first.SummaryText, nil
		}
		if first.GeneratedText != nil {
			return *first.GeneratedText, nil
		}
		return "", errors.New("response has neither summary_text nor generated_text")
	default:
		return "", fmt.Errorf("unexpected response: %s", truncate(trimmed, 200))
	}
}

// isUnreachable reports dial and DNS failures.
func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
