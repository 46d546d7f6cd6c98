package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperd/internal/paper"
	"paperd/internal/prompt"
	"paperd/internal/source"
)

// runTask validates f, generates kind and prints the text.
func (st *state) runTask(cmd *cobra.Command, kind prompt.TaskKind, f prompt.Fields) error {
	if err := prompt.Validate(kind, f); err != nil {
		return err
	}
	return st.withAssistant(func(a *paper.Assistant) error {
		doc, err := a.Generate(cmd.Context(), kind, f)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(doc.FullText))
		return err
	})
}

// textOrFile returns the file contents when file is set, else text.
func textOrFile(text, file string) (string, error) {
	if file == "" {
		return text, nil
	}
	return source.Load(file)
}

func newOutlineCmd(st *state) *cobra.Command {
	var f prompt.Fields
	cmd := &cobra.Command{
		Use:     "outline",
		Short:   "Draft a paper outline for a topic",
		Example: `  paperd outline --topic "Deep Learning in Healthcare" --keywords "medical imaging, CNN"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.runTask(cmd, prompt.TaskOutline, f)
		},
	}
	cmd.Flags().StringVar(&f.Topic, "topic", "", "Research topic")
	cmd.Flags().StringVar(&f.Keywords, "keywords", "", "Comma-separated keywords")
	return cmd
}

func newAbstractCmd(st *state) *cobra.Command {
	var f prompt.Fields
	var file string
	cmd := &cobra.Command{
		Use:     "abstract",
		Short:   "Draft an abstract from key points",
		Example: "  paperd abstract --topic \"Robotics\" --key-points \"- result A\\n- result B\"\n  paperd abstract --topic Robotics --file points.md",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := textOrFile(f.KeyPoints, file)
			if err != nil {
				return err
			}
			f.KeyPoints = kp
			return st.runTask(cmd, prompt.TaskAbstract, f)
		},
	}
	cmd.Flags().StringVar(&f.Topic, "topic", "", "Research topic")
	cmd.Flags().StringVar(&f.KeyPoints, "key-points", "", "Key points, one per line")
	cmd.Flags().StringVar(&file, "file", "", "Read key points from a .txt, .md or .pdf file")
	return cmd
}

func newSectionCmd(st *state) *cobra.Command {
	var f prompt.Fields
	cmd := &cobra.Command{
		Use:     "section",
		Short:   "Draft one section of a paper",
		Example: `  paperd section --section Methodology --topic "Robotics" --title "Learning to Grasp"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.runTask(cmd, prompt.TaskSection, f)
		},
	}
	cmd.Flags().StringVar(&f.SectionName, "section", "", "Section name, e.g. "+strings.Join(prompt.SectionNames, ", "))
	cmd.Flags().StringVar(&f.Topic, "topic", "", "Research topic")
	cmd.Flags().StringVar(&f.Title, "title", "", "Paper title")
	cmd.Flags().StringVar(&f.Keywords, "keywords", "", "Comma-separated keywords")
	cmd.Flags().StringVar(&f.Instructions, "instructions", "", "Additional instructions")
	return cmd
}

func newReviewCmd(st *state) *cobra.Command {
	var f prompt.Fields
	var file string
	cmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"literature-review"},
		Short:   "Draft a literature review from paper summaries",
		Example: "  paperd review --topic Robotics --file summaries.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := textOrFile(f.Papers, file)
			if err != nil {
				return err
			}
			f.Papers = papers
			return st.runTask(cmd, prompt.TaskLiteratureReview, f)
		},
	}
	cmd.Flags().StringVar(&f.Topic, "topic", "", "Research topic")
	cmd.Flags().StringVar(&f.Papers, "papers", "", "Paper summaries")
	cmd.Flags().StringVar(&file, "file", "", "Read paper summaries from a .txt, .md or .pdf file")
	return cmd
}

func newKeyPointsCmd(st *state) *cobra.Command {
	var f prompt.Fields
	var file string
	cmd := &cobra.Command{
		Use:     "keypoints",
		Aliases: []string{"key-points"},
		Short:   "Extract key points from text",
		Example: "  paperd keypoints --file paper.pdf\n  paperd keypoints --text \"...\"",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textOrFile(f.RawText, file)
			if err != nil {
				return err
			}
			f.RawText = text
			return st.runTask(cmd, prompt.TaskKeyPoints, f)
		},
	}
	cmd.Flags().StringVar(&f.RawText, "text", "", "Text to summarize")
	cmd.Flags().StringVar(&file, "file", "", "Read text from a .txt, .md or .pdf file")
	return cmd
}
