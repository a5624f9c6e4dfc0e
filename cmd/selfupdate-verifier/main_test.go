package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/open-edge-platform/selfupdate-verifier/internal/config"
	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

func TestResolveRequestedLogLevelPrefersExplicitFlag(t *testing.T) {
	prev := logLevel
	logLevel = "warn"
	t.Cleanup(func() {
		logLevel = prev
	})

	if got := resolveRequestedLogLevel(nil); got != "warn" {
		t.Fatalf("expected explicit log level to win, got %q", got)
	}
}

func TestResolveRequestedLogLevelUsesVerboseFallback(t *testing.T) {
	prev := logLevel
	logLevel = ""
	t.Cleanup(func() {
		logLevel = prev
	})

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("verbose", false, "")
	if err := cmd.Flags().Set("verbose", "true"); err != nil {
		t.Fatalf("set verbose: %v", err)
	}

	if got := resolveRequestedLogLevel(cmd); got != "debug" {
		t.Fatalf("expected verbose flag to set debug level, got %q", got)
	}
}

func TestResolveRequestedLogLevelIgnoresUnsetVerbose(t *testing.T) {
	prev := logLevel
	logLevel = ""
	t.Cleanup(func() {
		logLevel = prev
	})

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("verbose", false, "")

	if got := resolveRequestedLogLevel(cmd); got != "" {
		t.Fatalf("expected empty when verbose not set, got %q", got)
	}
}

func TestAttachLoggingHooksAddsHookToSubcommands(t *testing.T) {
	root := createRootCommand()
	for _, name := range []string{"check", "compare-versions"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatalf("find %s command: %v", name, err)
		}
		if cmd == nil || cmd.Name() != name {
			t.Fatalf("%s command not found", name)
		}
		if cmd.PersistentPreRunE == nil {
			t.Fatalf("expected logging hook on %s command", name)
		}
	}
}

func TestSetupConfigAndLoggingLoadsConfig(t *testing.T) {
	prevConfig, prevFile, prevLevel := globalConfig, configFile, logLevel
	t.Cleanup(func() {
		globalConfig, configFile, logLevel = prevConfig, prevFile, prevLevel
		logger.SetLogLevel("info")
	})

	dir := t.TempDir()
	configFile = filepath.Join(dir, "config.yml")
	logLevel = ""
	data := []byte("logging:\n  level: warn\nrepositories:\n  - id: selfupdate\n    path: repo\n")
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := setupConfigAndLogging(&cobra.Command{Use: "test"}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if globalConfig.Logging.Level != "warn" {
		t.Errorf("expected warn level from config, got %q", globalConfig.Logging.Level)
	}
	if logger.Level() != zapcore.WarnLevel {
		t.Errorf("expected logger at warn level, got %s", logger.Level())
	}
	repo, ok := config.NewConfigHelpers(globalConfig).Registry().Get("selfupdate")
	if !ok {
		t.Fatal("configured repository not registered")
	}
	if repo.Path != filepath.Join(dir, "repo") {
		t.Errorf("expected path relative to the config file, got %q", repo.Path)
	}
}

func TestSetupConfigAndLoggingRejectsBadLevel(t *testing.T) {
	prevConfig, prevFile, prevLevel := globalConfig, configFile, logLevel
	t.Cleanup(func() {
		globalConfig, configFile, logLevel = prevConfig, prevFile, prevLevel
	})

	configFile = ""
	logLevel = "loud"
	if err := setupConfigAndLogging(nil); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}
