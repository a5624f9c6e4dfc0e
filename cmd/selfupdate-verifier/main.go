package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/selfupdate-verifier/internal/config"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

// Persistent command flags
var (
	configFile string
	logLevel   string
	verbose    bool
)

// globalConfig is loaded by the logging hook before any subcommand runs.
var globalConfig = config.DefaultGlobalConfig()

func main() {
	if err := createRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand creates the root command with all subcommands attached
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "selfupdate-verifier",
		Short: "Checks an installer self-update repository before it is used",
		Long: `selfupdate-verifier compares the installer packages offered by a
self-update repository with the packages of the running installation system.

A repository is rejected when it downgrades one of the tracked installer
packages or bumps its major or minor version, which means it was built for
another product release.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to the verifier configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides the config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(createCheckCommand())
	rootCmd.AddCommand(createCompareVersionsCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks installs the configuration/logging setup on every subcommand.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			return setupConfigAndLogging(cmd)
		}
	}
}

// resolveRequestedLogLevel returns the level requested on the command
// line, or "" when the config file decides.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}

func setupConfigAndLogging(cmd *cobra.Command) error {
	cfg, err := config.LoadGlobalConfig(configFile)
	if err != nil {
		return err
	}
	globalConfig = cfg

	level := resolveRequestedLogLevel(cmd)
	if level == "" {
		level = config.NewConfigHelpers(cfg).LogLevel()
	}
	if !logger.SetLogLevel(level) {
		return fmt.Errorf("invalid log level %q", level)
	}
	logger.Init(logger.New())
	return nil
}
