package shell_test

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/open-edge-platform/selfupdate-verifier/internal/utils/shell"
)

// checkShellAvailable checks if a shell is available for testing
func checkShellAvailable(t *testing.T) {
	t.Helper()
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, sh := range shells {
		if _, err := exec.LookPath(sh); err == nil {
			return
		}
	}
	t.Skip("No shell (bash or sh) available in test environment")
}

func TestExecCmd(t *testing.T) {
	checkShellAvailable(t)

	out, err := shell.ExecCmd("echo test-exec-cmd", nil)
	if err != nil {
		t.Fatalf("ExecCmd failed: %v", err)
	}
	if !strings.Contains(out, "test-exec-cmd") {
		t.Errorf("Expected output to contain 'test-exec-cmd', got: %s", out)
	}
}

func TestExecCmdEnv(t *testing.T) {
	checkShellAvailable(t)

	out, err := shell.ExecCmd("echo $VERIFIER_TEST_VALUE", []string{"VERIFIER_TEST_VALUE=from-env"})
	if err != nil {
		t.Fatalf("ExecCmd failed: %v", err)
	}
	if !strings.Contains(out, "from-env") {
		t.Errorf("Expected environment to be passed, got: %s", out)
	}
}

func TestExecCmdFailure(t *testing.T) {
	checkShellAvailable(t)

	out, err := shell.ExecCmd("echo broken; exit 3", nil)
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}
	if !strings.Contains(out, "broken") {
		t.Errorf("Expected output to be returned on failure, got: %s", out)
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"/mnt":            "'/mnt'",
		"/mnt/with space": "'/mnt/with space'",
		"it's":            `'it'\''s'`,
	}
	for in, want := range tests {
		if got := shell.Quote(in); got != want {
			t.Errorf("Quote(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMockExecutor(t *testing.T) {
	originalExecutor := shell.Default
	defer func() { shell.Default = originalExecutor }()

	mock := shell.NewMockExecutor([]shell.MockCommand{
		{Pattern: "command -v 'rpm'", Output: "/usr/bin/rpm\n"},
		{Pattern: "command -v 'zypper'", Output: "", Error: errors.New("exit status 1")},
	})
	shell.Default = mock

	if !shell.IsCommandExist("rpm") {
		t.Error("Expected rpm to exist")
	}
	if shell.IsCommandExist("zypper") {
		t.Error("Expected zypper to be missing")
	}
	if _, err := shell.ExecCmd("uname -m", nil); err == nil {
		t.Error("Expected error for unmocked command")
	}
	if len(mock.Calls) != 3 {
		t.Errorf("Expected 3 recorded calls, got %d", len(mock.Calls))
	}
}
