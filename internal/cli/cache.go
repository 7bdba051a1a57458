package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the rendered output cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached render",
	Long: `Clear empties the memory layer and deletes the cache directory
(cache.dir). Renders are rebuilt on the next request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, p, err := setup()
		if err != nil {
			return err
		}
		if !cfg.Cache.Enabled {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled, nothing to clear")
			return nil
		}
		if err := p.ClearCache(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		if cfg.Cache.Dir != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", cfg.Cache.Dir)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared memory cache")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
