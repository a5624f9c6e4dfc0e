package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/open-edge-platform/selfupdate-verifier/internal/instsys"
	"github.com/open-edge-platform/selfupdate-verifier/internal/selfupdate"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestLoadGlobalConfigDefaults(t *testing.T) {
	cfg, err := LoadGlobalConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level info, got %q", cfg.Logging.Level)
	}
	if cfg.Installed.PackagesFile != instsys.DefaultPackagesFile {
		t.Errorf("expected default packages file, got %q", cfg.Installed.PackagesFile)
	}

	h := NewConfigHelpers(cfg)
	if !reflect.DeepEqual(h.TrackedPackages(), selfupdate.TrackedPackages()) {
		t.Errorf("expected built-in tracked packages, got %v", h.TrackedPackages())
	}
	if src, ok := h.InstalledSource().(instsys.PackagesFile); !ok || src.Path != instsys.DefaultPackagesFile {
		t.Errorf("unexpected installed source %#v", h.InstalledSource())
	}
	if len(h.Registry().IDs()) != 0 {
		t.Errorf("expected no repositories")
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verifier.yml")
	content := `logging:
  level: debug
installed:
  packagesFile: inst-sys/packages.root
trackedPackages:
  - yast2
  - yast2-update
  - yast2
repositories:
  - id: selfupdate
    path: repo
    gpgKey: /etc/keys/build.asc
  - id: media
    path: file:///run/media/update.iso
`
	if err := writeTestFile(path, content); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := NewConfigHelpers(cfg)
	if !h.IsDebugMode() {
		t.Errorf("expected debug mode")
	}
	if got := h.TrackedPackages(); !reflect.DeepEqual(got, []string{"yast2", "yast2-update"}) {
		t.Errorf("unexpected tracked packages %v", got)
	}

	src, ok := h.InstalledSource().(instsys.PackagesFile)
	if !ok || src.Path != filepath.Join(dir, "inst-sys", "packages.root") {
		t.Errorf("expected packages file relative to config dir, got %#v", h.InstalledSource())
	}

	reg := h.Registry()
	if !reflect.DeepEqual(reg.IDs(), []string{"media", "selfupdate"}) {
		t.Fatalf("unexpected repositories %v", reg.IDs())
	}
	repo, _ := reg.Get("selfupdate")
	if repo.Path != filepath.Join(dir, "repo") || repo.GPGKey != "/etc/keys/build.asc" {
		t.Errorf("unexpected repository %+v", repo)
	}
	media, _ := reg.Get("media")
	if media.Path != "file:///run/media/update.iso" {
		t.Errorf("URL path must not be rewritten, got %s", media.Path)
	}
}

func TestLoadGlobalConfigRPMRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verifier.yml")
	if err := writeTestFile(path, "installed:\n  rpmRoot: /mnt\n"); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src, ok := NewConfigHelpers(cfg).InstalledSource().(instsys.RPMDatabase)
	if !ok || src.Root != "/mnt" {
		t.Errorf("expected rpm database source, got %#v", NewConfigHelpers(cfg).InstalledSource())
	}
}

func TestLoadGlobalConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid yaml", "logging: [", "invalid YAML"},
		{"unknown level", "logging:\n  level: chatty\n", "schema validation failed"},
		{"unknown key", "workers: 8\n", "schema validation failed"},
		{"duplicate repository", "repositories:\n  - {id: a, path: /a}\n  - {id: a, path: /b}\n", "duplicate repository id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "verifier.yml")
			if err := writeTestFile(path, tt.content); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := LoadGlobalConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := LoadGlobalConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadGlobalConfigEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verifier.yml")
	if err := writeTestFile(path, ""); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Installed.PackagesFile != instsys.DefaultPackagesFile {
		t.Errorf("expected defaults for empty file, got %+v", cfg)
	}
}

// FuzzParseGlobalConfig tests that arbitrary YAML never crashes the loader
func FuzzParseGlobalConfig(f *testing.F) {
	f.Add("logging:\n  level: info\n")
	f.Add("")
	f.Add("{}")
	f.Add("null")
	f.Add("invalid: yaml: content: [")
	f.Add("repositories:\n  - id: a\n    path: b\n")
	f.Add("image: &anchor\n  name: test\nother: *anchor")

	f.Fuzz(func(t *testing.T, content string) {
		cfg, err := parseGlobalConfig([]byte(content))
		if err != nil {
			if cfg != nil {
				t.Error("Expected nil config when error occurred")
			}
			return
		}
		if cfg == nil {
			t.Error("Expected non-nil config when no error occurred")
		}
	})
}
