package main

import (
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/example/cropstudio/internal/config"
	"github.com/example/cropstudio/internal/export"
)

func testRoot() *root {
	r := &root{
		fs:      flag.NewFlagSet("cropstudio", flag.ContinueOnError),
		program: "cropstudio",
		config:  config.New(),
	}
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use")
	return r
}

func TestRunNoCommandReturnsUsage(t *testing.T) {
	err := testRoot().Run(nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if want := "Usage: cropstudio"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected help to contain %q, got %v", want, err)
	}
	if want := "studio"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected help to list the studio command, got %v", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := testRoot().Run([]string{"frobnicate"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}

func TestParseConfigRequiresAction(t *testing.T) {
	_, err := parseConfigCmd(nil, testRoot())
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if want := "config"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected config help, got %v", err)
	}
}

func TestConfigRunUnknownAction(t *testing.T) {
	cmd := &configCmd{
		root:   testRoot(),
		fs:     flag.NewFlagSet("config", flag.ContinueOnError),
		action: "explode",
	}
	err := cmd.Run()
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}

func TestParseStudioOutputDefault(t *testing.T) {
	cmd, err := parseStudioCmd(nil, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cmd.output != export.DefaultOutputRoot {
		t.Fatalf("output = %q, want %q", cmd.output, export.DefaultOutputRoot)
	}
}

func TestParseStudioOutputFromConfig(t *testing.T) {
	r := testRoot()
	r.config.OutputDir = "shots"
	cmd, err := parseStudioCmd(nil, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cmd.output != "shots" {
		t.Fatalf("output = %q, want config value", cmd.output)
	}
	cmd, err = parseStudioCmd([]string{"-output", "elsewhere"}, r)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cmd.output != "elsewhere" {
		t.Fatalf("output = %q, flag should win over config", cmd.output)
	}
}

func TestStudioHelpListsFlags(t *testing.T) {
	cmd, err := parseStudioCmd(nil, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	help := (&UsageError{of: cmd}).Error()
	for _, want := range []string{"-folder", "-output", "Keys:"} {
		if !strings.Contains(help, want) {
			t.Fatalf("expected studio help to contain %q, got:\n%s", want, help)
		}
	}
}

func TestVersionString(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { version, commit, date = origVersion, origCommit, origDate })

	version, commit, date = "1.2.0", "abc1234", "2026-01-02"
	if got, want := versionString(), "1.2.0 abc1234 2026-01-02"; got != want {
		t.Fatalf("versionString() = %q, want %q", got, want)
	}

	version, commit, date = "dev", "", ""
	if got := versionString(); got != "dev" {
		t.Fatalf("versionString() = %q, want dev", got)
	}
}
