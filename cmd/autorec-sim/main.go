package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vsariola/autorec/cmd"
	"github.com/vsariola/autorec/script"
	"github.com/vsariola/autorec/version"
)

var config struct {
	settings string
	format   string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "autorec-sim [script.yml]",
	Short: "Replay a scripted performance through the automation recorder",
	Long: `autorec-sim reads a YAML script of transport and control events,
records them with the live automation engine, and prints the resulting
automation curves.`,
	Version: version.VersionOrHash,
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVarP(&config.settings, "settings", "s", "",
		"YAML file with engine settings (default: built-in defaults)")
	rootCmd.Flags().StringVarP(&config.format, "format", "f", "text",
		"Output format: text, json or yaml")
	rootCmd.Flags().StringVarP(&config.logLevel, "log-level", "l", "warning",
		"Log level: debug, info, warning or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(c *cobra.Command, args []string) error {
	log, err := cmd.NewLogger(c.ErrOrStderr(), config.logLevel)
	if err != nil {
		return err
	}
	settings, err := cmd.LoadSettingsFile(config.settings)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("could not open script: %w", err)
	}
	defer f.Close()
	s, err := script.Load(f)
	if err != nil {
		return err
	}
	runner, err := script.NewRunner(s, settings, log)
	if err != nil {
		return err
	}
	if err := runner.Run(s.Events); err != nil {
		return err
	}
	return cmd.WriteCurves(c.OutOrStdout(), config.format, runner.Params)
}
