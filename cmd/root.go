package cmd

import (
	"fmt"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/depdash-cli/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	datasetPath string
	logLevel    string
	debug       bool

	// Loaded configuration (never nil once a command runs)
	cfg *cfgpkg.Global

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "depdash",
	Short: "depdash: student depression survey dashboard",
	Long: `depdash loads a student mental-health survey (CSV/TSV/XLSX), derives the depression
label and serves a small set of charts per page, filtered by gender. Pages can also be
rendered to Markdown or JSON from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.depdash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "dataset file (overrides config dataset_path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace|debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	if logLevel != "" {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	setupLogger(cfg)
}

func setupLogger(c *cfgpkg.Global) {
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: invalid log level %q, using info\n", c.LogLevel)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}
