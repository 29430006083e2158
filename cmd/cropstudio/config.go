package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/cropstudio/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	action string
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	cmd := &configCmd{
		root: r,
		fs:   flag.NewFlagSet("config", flag.ExitOnError),
	}
	cmd.fs.Usage = usageFunc(cmd)
	if err := cmd.fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.fs.NArg() != 1 {
		return nil, &UsageError{of: cmd}
	}
	cmd.action = cmd.fs.Arg(0)
	return cmd, nil
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *configCmd) Run() error {
	switch c.action {
	case "print":
		fmt.Print(c.config.String())
		return nil
	case "save":
		return c.save()
	default:
		return &UsageError{of: c}
	}
}

func (c *configCmd) save() error {
	loader := config.NewLoader(version, configPathOverride)
	path := loader.GetConfigPath()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "cropstudio", "config.rc")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(c.config.String()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Saved configuration to %s\n", path)
	return nil
}
