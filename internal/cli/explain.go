package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/arrestflow/internal/render"
)

var (
	explainFacts   factFlags
	explainNoColor bool
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Print the flowchart as an outline and list the ruled-out steps",
	Long: `Explain prints the flowchart as an indented outline for the given facts,
followed by every step that no longer applies and the fact that ruled it out.

Example:
  arrestflow explain --person police --warrant no
  arrestflow explain --category s469 --no-color`,
	Args: cobra.NoArgs,
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainFacts.register(explainCmd)
	explainCmd.Flags().BoolVar(&explainNoColor, "no-color", false, "disable ANSI styling")
}

func runExplain(cmd *cobra.Command, args []string) error {
	_, p, err := setup()
	if err != nil {
		return err
	}
	f, err := explainFacts.facts()
	if err != nil {
		return err
	}

	opts := p.Options()
	if explainNoColor {
		opts.Color = false
	}

	out := cmd.OutOrStdout()
	v := p.Explain(f)
	if err := render.NewTextRenderer(opts).Render(context.Background(), v, out); err != nil {
		return fmt.Errorf("explain failed: %w", err)
	}

	irrelevant := v.Irrelevant()
	if len(irrelevant) == 0 {
		fmt.Fprintln(out, "\nEvery step still applies.")
		return nil
	}

	fmt.Fprintf(out, "\nRuled out (%d):\n", len(irrelevant))
	for _, id := range irrelevant {
		n, _ := v.Node(id)
		fmt.Fprintf(out, "  %-32s %s\n", id, n.Reason)
	}
	return nil
}
