package backend

import (
	"errors"
	"fmt"
)

var errLlamaNotBuilt = errors.New("llama support not built (missing 'llama' build tag)")

// ModelUnavailableError signals that the model could not be resolved or loaded,
// or that the remote endpoint cannot be reached at all.
type ModelUnavailableError struct {
	Backend string
	Model   string
	Err     error
}

func (e *ModelUnavailableError) Error() string {
	msg := "model unavailable"
	if e.Backend != "" {
		msg = e.Backend + ": " + msg
	}
	if e.Model != "" {
		msg += " (" + e.Model + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// GenerationError wraps a failure during the forward pass or HTTP round trip,
// including malformed responses and timeouts.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Backend + ": generation failed"
	}
	return fmt.Sprintf("%s: generation failed: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// BusyError signals queue timeout/overflow on a shared handle.
type BusyError struct{ Backend string }

func (e *BusyError) Error() string { return "too busy: " + e.Backend }

func unavailable(backend, model string, err error) error {
	return &ModelUnavailableError{Backend: backend, Model: model, Err: err}
}

func generationFailed(backend string, err error) error {
	return &GenerationError{Backend: backend, Err: err}
}

// IsModelUnavailable reports whether err indicates a missing or unloadable model.
func IsModelUnavailable(err error) bool {
	var target *ModelUnavailableError
	return errors.As(err, &target)
}

// IsGeneration reports whether err is a generation failure.
func IsGeneration(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

// IsBusy reports whether err indicates backpressure (return 429).
func IsBusy(err error) bool {
	var target *BusyError
	return errors.As(err, &target)
}
