package cli

import (
	"fmt"

	"paperd/internal/backend"
	"paperd/internal/paper"
)

// newAssistant builds an unloaded backend handle and an Assistant over it.
// The caller owns the handle and must Close it.
func (st *state) newAssistant() (*backend.Handle, *paper.Assistant, error) {
	h, err := backend.New(st.cfg.BackendOptions(st.log))
	if err != nil {
		return nil, nil, err
	}
	opts, err := st.cfg.PaperOptions(st.log)
	if err != nil {
		_ = h.Close()
		return nil, nil, err
	}
	if k, _ := backend.ParseKind(st.cfg.Backend.Kind); k == backend.KindLlama && !backend.LlamaSupported() {
		st.log.Warn().Msg("binary built without llama support; rebuild with -tags=llama")
	}
	return h, paper.NewAssistant(h, opts), nil
}

// withAssistant runs fn with a fresh Assistant and releases the backend afterwards.
func (st *state) withAssistant(fn func(a *paper.Assistant) error) error {
	h, a, err := st.newAssistant()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			st.log.Warn().Err(cerr).Msg("backend close failed")
		}
	}()
	if err := fn(a); err != nil {
		return fmt.Errorf("%s backend: %w", h.Name(), err)
	}
	return nil
}
