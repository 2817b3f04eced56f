// Package cmd provides the docblocks command-line interface.
//
// Configuration is read from several sources, highest priority first:
//
//  1. Command-line flags (--port, --manifest, ...)
//  2. Environment variables (DOCBLOCKS_SERVER_PORT, DOCBLOCKS_DOCS_MANIFEST, ...)
//  3. The config file named by --config or DOCBLOCKS_CONFIG_FILE
//  4. .docblocks.yml in the current directory
//  5. Built-in defaults
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docblocks",
	Short: "Live documentation pages for templ components",
	Long: `docblocks serves documentation pages built from a manifest of stories.
Each preview block can reveal its source code and zoom its content, and open
pages reload when the manifest or any file it references changes.

Quick Start:
  docblocks serve                 Start the docs server
  docblocks list                  List stories and pages
  docblocks render buttons        Write one page as static HTML
  docblocks validate              Check the manifest`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .docblocks.yml, can also use DOCBLOCKS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("manifest", config.DefaultManifest, "docs manifest file")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"manifest":   "docs.manifest",
		"log-level":  "log.level",
		"log-format": "log.format",
	})
}

// initConfig points viper at the config file and enables DOCBLOCKS_
// environment overrides. A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("DOCBLOCKS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".docblocks")
	}

	viper.SetEnvPrefix("DOCBLOCKS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
