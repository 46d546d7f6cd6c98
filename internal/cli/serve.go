package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"paperd/internal/httpapi"
	"paperd/internal/manager"
	"paperd/internal/registry"
)

func newServeCmd(st *state) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  paperd serve --addr :8080 --backend llama --model mistral-7b-instruct",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				st.cfg.Server.Addr = addr
			}
			return st.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080 (defaults PAPERD_ADDR or :8080)")
	return cmd
}

func (st *state) serve(parent context.Context) error {
	cfg := st.cfg
	log := st.log

	models, err := registry.LoadDir(cfg.Backend.ModelsDir)
	if err != nil {
		log.Warn().Err(err).Str("models_dir", cfg.Backend.ModelsDir).Msg("model registry unavailable")
	}
	h, assistant, err := st.newAssistant()
	if err != nil {
		return err
	}
	mgr, err := manager.New(manager.ManagerConfig{
		Handle:    h,
		Assistant: assistant,
		Registry:  models,
		Logger:    log,
	})
	if err != nil {
		_ = h.Close()
		return err
	}
	defer mgr.Close()

	baseCtx, cancelBase := context.WithCancel(parent)
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBodyBytes(cfg.Server.MaxBodyBytes)
	httpapi.SetRequestTimeout(cfg.Server.RequestTimeout.D())
	httpapi.SetCORSOptions(len(cfg.Server.CORSOrigins) > 0, cfg.Server.CORSOrigins, nil, nil)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	if !cfg.Backend.LazyLoad {
		go func() { _ = mgr.Preload(baseCtx) }()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("backend", cfg.Backend.Kind).Str("model", cfg.Backend.Model).Msg("paperd listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-parent.Done():
		log.Info().Msg("shutting down")
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.D())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}
