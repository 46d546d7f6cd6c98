package backend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paperd/pkg/types"
)

// State represents the lifecycle state of a Handle.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateError    State = "error"
	StateClosed   State = "closed"
)

// Defaults applied when corresponding HandleConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 10 * time.Minute
)

var errHandleClosed = errors.New("model handle closed")

// Factory constructs the backend owned by a Handle.
type Factory func() (TextGenerationBackend, error)

// HandleConfig encapsulates the tunables for NewHandle.
type HandleConfig struct {
	// Kind and Model describe the backend for status reporting.
	Kind  Kind
	Model string
	// Factory builds the backend on first use.
	Factory       Factory
	MaxQueueDepth int
	MaxWait       time.Duration
	Logger        zerolog.Logger
}

// Handle owns one backend for the lifetime of the process. The backend is
// built once on first use and reused; generations are admitted one at a time
// through a bounded FIFO queue. Handle itself satisfies TextGenerationBackend.
type Handle struct {
	mu      sync.RWMutex
	loadMu  sync.Mutex
	cfg     HandleConfig
	backend TextGenerationBackend
	state   State
	lastErr string

	lastUsed    time.Time
	loads       uint64
	generations uint64

	maxWait time.Duration
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	done    chan struct{} // closed by Close
	once    sync.Once
	log     zerolog.Logger
}

// NewHandle returns an unloaded handle. Nothing is constructed until Load or
// the first Generate call.
func NewHandle(cfg HandleConfig) *Handle {
	depth := cfg.MaxQueueDepth
	if depth <= 0 {
		depth = defaultMaxQueueDepth
	}
	wait := cfg.MaxWait
	if wait <= 0 {
		wait = defaultMaxWait
	}
	return &Handle{
		cfg:     cfg,
		state:   StateUnloaded,
		maxWait: wait,
		genCh:   make(chan struct{}, 1),
		queueCh: make(chan struct{}, depth),
		done:    make(chan struct{}),
		log:     cfg.Logger,
	}
}

// Load constructs the backend if it is not loaded yet. A failed load is
// reported and attempted again on the next call.
func (h *Handle) Load(ctx context.Context) error {
	_, err := h.ensure(ctx)
	return err
}

func (h *Handle) ensure(ctx context.Context) (TextGenerationBackend, error) {
	h.mu.RLock()
	b, state := h.backend, h.state
	h.mu.RUnlock()
	if state == StateClosed {
		return nil, h.closedErr()
	}
	if b != nil {
		return b, nil
	}

	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	h.mu.Lock()
	if h.backend != nil || h.state == StateClosed {
		b, state = h.backend, h.state
		h.mu.Unlock()
		if state == StateClosed {
			return nil, h.closedErr()
		}
		return b, nil
	}
	h.state = StateLoading
	h.mu.Unlock()

	if err := ctx.Err(); err != nil {
		h.setState(StateUnloaded, "")
		return nil, err
	}
	if h.cfg.Factory == nil {
		err := unavailable(string(h.cfg.Kind), h.cfg.Model, errors.New("no backend factory configured"))
		h.setState(StateError, err.Error())
		return nil, err
	}

	start := time.Now()
	b, err := h.cfg.Factory()
	if err != nil {
		if !IsModelUnavailable(err) {
			err = unavailable(string(h.cfg.Kind), h.cfg.Model, err)
		}
		modelLoadsTotal.WithLabelValues(string(h.cfg.Kind), "error").Inc()
		h.setState(StateError, err.Error())
		h.log.Error().Err(err).Str("backend", string(h.cfg.Kind)).Str("model", h.cfg.Model).Msg("backend load failed")
		return nil, err
	}
	modelLoadsTotal.WithLabelValues(string(h.cfg.Kind), "ok").Inc()

	h.mu.Lock()
	h.backend = b
	h.state = StateReady
	h.lastErr = ""
	h.loads++
	h.mu.Unlock()
	h.log.Info().Str("backend", b.Name()).Str("model", h.cfg.Model).Dur("dur", time.Since(start)).Msg("backend ready")
	return b, nil
}

func (h *Handle) setState(s State, lastErr string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateClosed {
		return
	}
	h.state = s
	h.lastErr = lastErr
}

// Name reports the configured backend kind.
func (h *Handle) Name() string { return string(h.cfg.Kind) }

// Generate loads the backend if needed, waits for admission and runs one generation.
func (h *Handle) Generate(ctx context.Context, prompt string, sampling SamplingConfig) (string, error) {
	b, err := h.ensure(ctx)
	if err != nil {
		generationsTotal.WithLabelValues(h.Name(), outcomeLabel(err)).Inc()
		return "", err
	}
	release, err := h.beginGeneration(ctx)
	if err != nil {
		generationsTotal.WithLabelValues(h.Name(), outcomeLabel(err)).Inc()
		return "", err
	}
	defer release()

	start := time.Now()
	text, err := b.Generate(ctx, prompt, sampling)
	dur := time.Since(start)
	generationDuration.WithLabelValues(h.Name()).Observe(dur.Seconds())
	generationsTotal.WithLabelValues(h.Name(), outcomeLabel(err)).Inc()

	h.mu.Lock()
	h.generations++
	if err != nil {
		h.lastErr = err.Error()
	}
	h.mu.Unlock()

	ev := h.log.Debug()
	if err != nil {
		ev = h.log.Warn().Err(err)
	}
	ev.Str("backend", h.Name()).Int("prompt_len", len(prompt)).Int("max_length", sampling.MaxLength).Dur("dur", dur).Msg("generate")
	return text, err
}

// beginGeneration reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (h *Handle) beginGeneration(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(h.maxWait)
	defer timer.Stop()
	select {
	case h.queueCh <- struct{}{}:
		queueDepth.Inc()
	case <-h.done:
		return func() {}, h.closedErr()
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, &BusyError{Backend: h.Name()}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-h.queueCh
			queueDepth.Dec()
		}
	}()
	select {
	case h.genCh <- struct{}{}:
		select {
		case <-h.done:
			<-h.genCh
			return func() {}, h.closedErr()
		default:
		}
		acquired = true
		h.mu.Lock()
		h.lastUsed = time.Now()
		h.mu.Unlock()
		return func() { <-h.genCh; <-h.queueCh; queueDepth.Dec() }, nil
	case <-h.done:
		return func() {}, h.closedErr()
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, &BusyError{Backend: h.Name()}
	}
}

func (h *Handle) closedErr() error {
	return unavailable(string(h.cfg.Kind), h.cfg.Model, errHandleClosed)
}

// Ready reports whether the backend has been constructed successfully.
func (h *Handle) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state == StateReady
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Status builds a read-only snapshot for GET /status.
func (h *Handle) Status() types.BackendStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st := types.BackendStatus{
		Backend:          string(h.cfg.Kind),
		Model:            h.cfg.Model,
		State:            string(h.state),
		LastError:        h.lastErr,
		QueueLen:         len(h.queueCh),
		Inflight:         len(h.genCh),
		MaxQueueDepth:    cap(h.queueCh),
		LoadsTotal:       h.loads,
		GenerationsTotal: h.generations,
	}
	if !h.lastUsed.IsZero() {
		st.LastUsed = h.lastUsed.Unix()
	}
	return st
}

// Close tears down the backend. Queued callers are released at once and,
// like any later call, fail with ModelUnavailableError.
func (h *Handle) Close() error {
	h.mu.Lock()
	h.state = StateClosed
	h.mu.Unlock()
	h.once.Do(func() { close(h.done) })

	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	h.mu.Lock()
	b := h.backend
	h.backend = nil
	h.state = StateClosed
	h.mu.Unlock()
	if b == nil {
		return nil
	}
	// Wait for the in-flight generation; the slot is never released.
	timer := time.NewTimer(h.maxWait)
	defer timer.Stop()
	select {
	case h.genCh <- struct{}{}:
	case <-timer.C:
		h.log.Warn().Str("backend", b.Name()).Msg("closing backend with generation in flight")
	}
	h.log.Info().Str("backend", b.Name()).Msg("backend closed")
	return b.Close()
}
