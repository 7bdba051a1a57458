package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/arrestflow/internal/render"
	"github.com/ppiankov/arrestflow/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	atlasFormat  string
	atlasTimeout time.Duration
)

// atlasCmd represents the atlas command
var atlasCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Render the flowchart for every combination of facts",
	Long: `Atlas renders one file per fact combination in parallel, unknown values
included, and writes an index.json describing them:
- One file per combination, named after its facts (police_nowarrant_s469.svg)
- Renders run concurrently with a configurable worker count
- A failed combination is reported and does not stop the others

Example:
  arrestflow atlas
  arrestflow atlas --format mermaid --output-dir ./atlas
  arrestflow atlas --concurrency 8 --timeout 2m`,
	Args: cobra.NoArgs,
	RunE: runAtlas,
}

func init() {
	rootCmd.AddCommand(atlasCmd)

	atlasCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	atlasCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default from config)")
	atlasCmd.Flags().StringVarP(&atlasFormat, "format", "f", "", "output format (default from config)")
	atlasCmd.Flags().DurationVar(&atlasTimeout, "timeout", 5*time.Minute, "total timeout for the atlas")
}

func runAtlas(cmd *cobra.Command, args []string) error {
	cfg, p, err := setup()
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	dir := outputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	name := atlasFormat
	if name == "" {
		name = cfg.Render.Format
	}
	format, err := render.ParseFormat(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), atlasTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Rendering atlas: %s\n", dir)
		fmt.Fprintf(os.Stderr, "Format: %s\n", format)
		fmt.Fprintf(os.Stderr, "Concurrency: %d workers\n", workers)
		fmt.Fprintln(os.Stderr)
	}

	start := time.Now()
	report, err := worker.NewAtlasProcessor(p, workers).WriteAtlas(ctx, dir, format)
	if err != nil {
		return fmt.Errorf("atlas failed: %w", err)
	}
	elapsed := time.Since(start)

	if verbose {
		for _, e := range report.Entries {
			if e.Error != "" {
				fmt.Fprintf(os.Stderr, "✗ %s: %s\n", e.Facts.Key(), e.Error)
				continue
			}
			fmt.Fprintf(os.Stderr, "✓ %s (%d relevant, %d ruled out)\n", e.File, e.Relevant, e.Irrelevant)
		}
		fmt.Fprintln(os.Stderr)
	}

	succeeded := len(report.Entries) - report.Failures
	fmt.Fprintf(cmd.OutOrStdout(), "Atlas complete: %d/%d rendered in %v\n", succeeded, len(report.Entries), elapsed.Round(time.Millisecond))
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", dir)

	if report.Failures > 0 {
		return fmt.Errorf("%d of %d combinations failed", report.Failures, len(report.Entries))
	}
	return nil
}
