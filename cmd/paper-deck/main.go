// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-deck CLI.
//
// paper-deck prepares the raw material for a slide deck about an academic
// paper: it clones the paper's source repository, finds its figure
// directory, rasterizes PDF figures to PNG, and compiles the Marp deck an
// agent writes from them.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-deck/internal/proc"
	"github.com/pdiddy/paper-deck/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// runner executes external programs; tests replace it.
var runner proc.Runner = proc.Default

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets = secrets.Secrets{}

// rootCmd is the base command for the paper-deck CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-deck",
	Short: "Prepare figures and compile Marp slide decks from paper repositories",
	Long: `paper-deck handles the mechanical parts of turning an academic paper into a
slide deck. It clones the paper's repository, locates the figure directory,
converts PDF figures to PNG, and compiles Marp Markdown to PDF.

Writing the slides themselves is left to the agent driving the tool: run
"paper-deck prepare" to set up, write the deck against the converted
figures, then compile it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-deck.yaml or ~/.config/paper-deck/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files (e.g. github-token)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-deck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-deck"))
		}
	}

	viper.SetEnvPrefix("PAPER_DECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
