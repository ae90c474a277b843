package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
	"github.com/nicky-ayoub/ebitreveal/internal/config"
	"github.com/nicky-ayoub/ebitreveal/internal/logging"
)

var (
	// Global flags
	configPath  string
	catalogPath string
	verbose     bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ebitreveal",
	Short: "Before/after comparison viewer for studio projects",
	Long: `ebitreveal shows two images of the same scene on top of each other and
reveals the "after" image up to a draggable divider.

Run without arguments to browse the project catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if catalogPath != "" {
			cfg.Catalog.Path = catalogPath
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runView,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ebitreveal.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Project catalog file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	addViewFlags(rootCmd)
	addViewFlags(viewCmd)
	rootCmd.AddCommand(viewCmd, catalogCmd)
}

// openStore returns the configured project store.
func openStore() *catalog.FileStore {
	return catalog.NewFileStore(cfg.Catalog.Path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
