package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/arrestflow/internal/render"
)

var (
	renderFacts  factFlags
	renderFormat string
	renderOut    string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the flowchart for a set of facts",
	Long: `Render draws the whole flowchart and dims every step the given facts
rule out. Facts left out stay unknown.

Example:
  arrestflow render --format svg -o chart.svg
  arrestflow render --person police --warrant false --category s469 -o police.svg
  arrestflow render --person citizen --format mermaid`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFacts.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format (dot, svg, png, mermaid, json, text); default from config")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "output file (default: stdout)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, p, err := setup()
	if err != nil {
		return err
	}
	f, err := renderFacts.facts()
	if err != nil {
		return err
	}

	name := renderFormat
	if name == "" {
		name = cfg.Render.Format
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		return err
	}

	if renderOut == "" {
		if format == render.FormatPNG {
			return fmt.Errorf("png output needs --output")
		}
		data, err := p.RenderFacts(context.Background(), f, format)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	n, err := p.RenderToFile(context.Background(), f, format, renderOut)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s (%d bytes, facts %s)\n", renderOut, n, f.Key())
	}
	return nil
}
