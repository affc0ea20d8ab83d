// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litreview CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/secrets"
	"github.com/pdiddy/litreview/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// credentials holds the secret sources opened at startup.
var credentials *secrets.Store

// rootCmd is the base command for the litreview CLI.
var rootCmd = &cobra.Command{
	Use:   "litreview",
	Short: "LLM-assisted systematic literature review",
	Long: `litreview screens a directory of PDF papers with a language model, runs a
detailed extraction pass over the papers a human kept, and turns the
resulting tables into summary counts and figures.

Each pass is a subcommand: screen, review, report and index. Paths are
relative to --root, which holds data/ and figures/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(viper.GetBool("verbose"))

		s, err := secrets.Open(rootDir())
		if err != nil {
			return err
		}
		credentials = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litreview.yaml or ~/.config/litreview/litreview.yaml)")
	rootCmd.PersistentFlags().String("root", ".", "project directory containing data/ and figures/")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Int("max-retries", 0, "retries on HTTP 429 rate limits (0 = default of 5, negative = never retry)")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("max_retries", rootCmd.PersistentFlags().Lookup("max-retries"))

	viper.SetDefault("provider", string(types.ProviderOpenAI))
	viper.SetDefault("http.timeout", 2*time.Minute)
	viper.SetDefault("http.user_agent", "litreview/"+version)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litreview")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litreview"))
		}
	}

	viper.SetEnvPrefix("LITREVIEW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

func setupLogging(verbose bool) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func rootDir() string {
	return viper.GetString("root")
}

// dataPath resolves a path relative to the project root. Absolute paths
// are returned unchanged.
func dataPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir(), p)
}

// aiConfig assembles the model settings for the pass whose viper keys
// start with prefix. The credential is resolved unless debug is set.
func aiConfig(prefix string) (types.AIConfig, error) {
	cfg := types.AIConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Provider:    types.Provider(viper.GetString("provider")),
		Model:       viper.GetString(prefix + ".model"),
		Temperature: viper.GetFloat64(prefix + ".temperature"),
		MaxRetries:  viper.GetInt("max_retries"),
		Debug:       viper.GetBool(prefix + ".debug"),
		FixturePath: dataPath(viper.GetString(prefix + ".fixture")),
	}

	if cfg.Debug {
		log.Debug().Str("fixture", cfg.FixturePath).Msg("debug mode, model calls are replayed")
		return cfg, nil
	}

	key := llm.CredentialKey(cfg.Provider)
	value, source := credentials.Lookup(key)
	if value == "" {
		return cfg, fmt.Errorf("%s is not set: export it, add it to .env, or write .secrets/%s",
			key, secrets.FileName(key))
	}
	log.Debug().Str("key", key).Str("source", source).Msg("loaded credential")
	cfg.APIKey = value
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
