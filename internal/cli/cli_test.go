package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/changetower/pkg/catalog"
)

func TestRootCommandSubcommands(t *testing.T) {
	c, _ := newTestCLI()
	root := c.RootCommand()

	want := []string{"fetch", "tree", "modules", "branches", "cache", "serve", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestSetupLoadsConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	logPath := filepath.Join(dir, "changetower.log")
	if err := os.WriteFile(cfgPath, []byte("branch = \"sdk-53\"\n\n[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestCLI()
	defer c.Close()
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "--log-file", logPath, "branches"})
	root.SetOut(&bytes.Buffer{})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := c.settings().Branch; got != "sdk-53" {
		t.Errorf("branch = %q, want sdk-53", got)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}

	c.Logger.Info("written to both outputs")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written to both outputs") {
		t.Errorf("log file = %q", data)
	}
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[store]\nbackend = \"floppy\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestCLI()
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "branches"})
	root.SetErr(&bytes.Buffer{})

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected an invalid config error")
	}
}

func TestWriteTables(t *testing.T) {
	var buf bytes.Buffer
	writeModuleTable(&buf, catalog.InCategory("Location & Maps"))
	for _, want := range []string{"Module", "expo-location", "expo-maps"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("module table missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	writeBranchTable(&buf, catalog.Branches()[:3], "sdk-53")
	for _, want := range []string{"main", "sdk-54", "sdk-53", "latest"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("branch table missing %q:\n%s", want, buf.String())
		}
	}
}
