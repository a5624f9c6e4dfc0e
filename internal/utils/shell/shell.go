package shell

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/logger"
)

// Executor runs a shell command line and returns its combined output.
type Executor interface {
	Exec(cmdStr string, envVal []string) (string, error)
}

// Default is the executor used by ExecCmd and IsCommandExist. Tests swap it
// for a *MockExecutor.
var Default Executor = &hostExecutor{}

type hostExecutor struct{}

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func (h *hostExecutor) Exec(cmdStr string, envVal []string) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", cmdStr)

	cmd := exec.Command(getShell(), "-c", cmdStr)
	cmd.Env = append(os.Environ(), envVal...)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)
	if err != nil {
		if outputStr != "" {
			log.Infof("%s", outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", cmdStr, err)
	}
	return outputStr, nil
}

// ExecCmd executes a command line with the default executor.
func ExecCmd(cmdStr string, envVal []string) (string, error) {
	return Default.Exec(cmdStr, envVal)
}

// IsCommandExist checks if a command can be found on PATH.
func IsCommandExist(cmd string) bool {
	output, err := Default.Exec("command -v "+Quote(cmd), nil)
	if err != nil {
		return false
	}
	return len(bytes.TrimSpace([]byte(output))) > 0
}

// Quote wraps s in single quotes for use as one shell word.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// MockCommand is one canned response of a MockExecutor.
type MockCommand struct {
	Pattern string // substring of the command line
	Output  string
	Error   error
}

// MockExecutor answers commands from a fixed table and records every call.
type MockExecutor struct {
	Commands []MockCommand
	Calls    []string
}

// NewMockExecutor returns an executor answering from commands.
func NewMockExecutor(commands []MockCommand) *MockExecutor {
	return &MockExecutor{Commands: commands}
}

func (m *MockExecutor) Exec(cmdStr string, envVal []string) (string, error) {
	m.Calls = append(m.Calls, cmdStr)
	for _, c := range m.Commands {
		if strings.Contains(cmdStr, c.Pattern) {
			return c.Output, c.Error
		}
	}
	return "", fmt.Errorf("unexpected command: %s", cmdStr)
}
