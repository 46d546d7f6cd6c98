// Package cli implements the paperd command tree: the HTTP server and one-shot
// generation commands sharing one configuration and backend setup.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"paperd/internal/config"
)

// state carries flag values and the resolved configuration between the
// persistent pre-run and the subcommands.
type state struct {
	configPath string
	backend    string
	model      string
	logLevel   string
	logFormat  string

	cfg config.Config
	log zerolog.Logger
}

// Execute runs the command tree with args and returns the command error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCmd constructs the paperd command tree.
func NewRootCmd() *cobra.Command { return buildRootCmdWith(&state{}) }

func buildRootCmdWith(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:           "paperd",
		Short:         "Research paper drafting assistant backed by a language model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> config overrides
	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", os.Getenv("PAPERD_CONFIG"), "Config file (.yaml|.yml|.json|.toml)")
	root.PersistentFlags().StringVar(&st.backend, "backend", "", "Backend: llama|llama-server|remote|mock (defaults PAPERD_BACKEND or mock)")
	root.PersistentFlags().StringVar(&st.model, "model", "", "Model name or *.gguf path (llama), model id (llama-server)")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults PAPERD_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&st.logFormat, "log-format", "", "Log format: console|json")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return st.resolve(cmd)
	}

	root.AddCommand(
		newServeCmd(st),
		newOutlineCmd(st),
		newAbstractCmd(st),
		newSectionCmd(st),
		newReviewCmd(st),
		newKeyPointsCmd(st),
		newPaperCmd(st),
		newVersionCmd(),
	)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	root.AddCommand(completionCmd)

	return root
}

// resolve builds the effective configuration: .env, config file, PAPERD_*
// environment, command-line flags, then defaults.
func (st *state) resolve(cmd *cobra.Command) error {
	config.LoadDotEnv()
	var cfg config.Config
	if st.configPath != "" {
		var err error
		if cfg, err = config.Load(st.configPath); err != nil {
			return err
		}
	}
	config.ApplyEnv(&cfg)
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend.Kind = st.backend
	}
	if flags.Changed("model") {
		cfg.Backend.Model = st.model
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = st.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = st.logFormat
	}
	config.ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	st.cfg = cfg
	st.log = newLogger(cfg.Log, cmd.ErrOrStderr())
	return nil
}
