package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperd/internal/common/fsutil"
	"paperd/internal/paper"
	"paperd/internal/prompt"
)

// DefaultPaperFile is where `paperd paper` writes the full text.
const DefaultPaperFile = "research_paper.txt"

func newPaperCmd(st *state) *cobra.Command {
	var (
		req         paper.PaperRequest
		out         string
		toStdout    bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "paper",
		Short: "Draft a full paper section by section and save it as text",
		Example: "  paperd paper --topic \"Deep Learning in Healthcare\" --title \"CNNs for Radiology\"\n" +
			"  paperd paper --topic Robotics --out robotics.txt --concurrency 5",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Topic) == "" {
				return &prompt.ValidationError{Kind: paper.KindPaper, Missing: []string{prompt.FieldTopic}}
			}
			if cmd.Flags().Changed("concurrency") {
				st.cfg.Paper.Concurrency = concurrency
			}
			errw := cmd.ErrOrStderr()
			req.Progress = func(section string, done, total int) {
				fmt.Fprintf(errw, "[%d/%d] %s\n", done, total, section)
			}
			return st.withAssistant(func(a *paper.Assistant) error {
				doc, err := a.GenerateFullPaper(cmd.Context(), req)
				if err != nil {
					return err
				}
				if toStdout {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.FullText)
					return err
				}
				if err := fsutil.WriteFileAtomic(out, []byte(doc.FullText)); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				st.log.Info().Str("file", out).Str("id", doc.ID).Int("sections", len(doc.Sections)).Msg("paper written")
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Paper saved to %s\n", out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&req.Topic, "topic", "", "Research topic")
	cmd.Flags().StringVar(&req.Title, "title", "", "Paper title")
	cmd.Flags().StringVar(&req.Keywords, "keywords", "", "Comma-separated keywords")
	cmd.Flags().StringVar(&req.Instructions, "instructions", "", "Additional instructions for every section")
	cmd.Flags().StringVarP(&out, "out", "o", DefaultPaperFile, "Output file")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the paper instead of writing a file")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Sections generated in parallel (1-5)")
	return cmd
}
