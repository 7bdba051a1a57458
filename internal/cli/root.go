package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/arrestflow/internal/model"
	"github.com/ppiankov/arrestflow/internal/pipeline"
	"github.com/ppiankov/arrestflow/internal/rules"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.1.0"

var (
	cfgFile   string
	rulesFile string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "arrestflow",
	Short: "Arrestflow - Criminal Code arrest and release flowchart",
	Long: `Arrestflow draws the Criminal Code of Canada arrest and release
procedure as a flowchart and dims the steps that no longer apply once you
say who is arresting, whether there is a warrant and what kind of offence
is involved.

It is a study aid, not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and the fingerprint of the built-in rule graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "arrestflow %s (rules %s)\n", version, rules.Fingerprint(rules.CriminalCode())[:12])
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.arrestflow/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rule graph to use instead of the built-in one")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())
	bindFlags()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".arrestflow"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ARRESTFLOW_*, e.g. ARRESTFLOW_SERVER_ADDR
	viper.SetEnvPrefix("ARRESTFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindFlags binds flags to their config keys
func bindFlags() {
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("rules.file", rootCmd.PersistentFlags().Lookup("rules"))
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.watch", serveCmd.Flags().Lookup("watch"))
}

// setDefaults registers every config key so env vars can override it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("rules.file", cfg.Rules.File)

	viper.SetDefault("render.format", cfg.Render.Format)
	viper.SetDefault("render.rank_dir", cfg.Render.RankDir)
	viper.SetDefault("render.relevant_fill", cfg.Render.RelevantFill)
	viper.SetDefault("render.irrelevant_fill", cfg.Render.IrrelevantFill)
	viper.SetDefault("render.irrelevant_font", cfg.Render.IrrelevantFont)
	viper.SetDefault("render.color", cfg.Render.Color)

	viper.SetDefault("server.addr", cfg.Server.Addr)
	viper.SetDefault("server.requests_per_second", cfg.Server.RequestsPerSecond)
	viper.SetDefault("server.burst", cfg.Server.Burst)
	viper.SetDefault("server.watch", cfg.Server.Watch)
	viper.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	viper.SetDefault("server.trusted_clients", cfg.Server.TrustedClients)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.dir", cfg.Output.Dir)
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadGraph returns the configured rule graph, or the built-in one
func loadGraph(cfg *model.Config) (*rules.Graph, error) {
	if cfg.Rules.File == "" {
		return rules.CriminalCode(), nil
	}
	g, err := rules.LoadFile(cfg.Rules.File)
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded rules: %s (%d nodes, %d edges)\n", cfg.Rules.File, len(g.Nodes), len(g.Edges))
	}
	return g, nil
}

// setup loads config and graph and builds a pipeline over them
func setup() (*model.Config, *pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	g, err := loadGraph(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pipeline.NewPipeline(cfg, g), nil
}
