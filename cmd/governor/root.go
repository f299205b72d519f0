package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/config"
	"mercator-hq/governor/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "governor",
	Short: "Governor - runtime governance for LLM sessions",
	Long: `Governor enforces a fixed set of governance rules on model output at
runtime. It tracks per-session drift, blocks repeated and adversarial
responses, and keeps an audit trail of every governance event.

Responses are checked through the hook API served by "governor serve" or
directly with "governor check".`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code mapped from its
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(cli.FormatText), "output format (text, json, csv)")
}

// loadConfig loads the --config file with environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// setupCommandLogging routes logs of one-shot commands to w so they do not
// mix with command output.
func setupCommandLogging(cfg *config.Config, w io.Writer) error {
	if !verbose {
		cfg.Telemetry.Logging.Level = "warn"
	}
	_, err := logging.Setup(cfg.Telemetry.Logging, w)
	return err
}

// render writes data to the command's output in the --output format.
func render(cmd *cobra.Command, data any) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
