package main

import (
	"flag"

	"github.com/example/cropstudio/internal/export"
	"github.com/example/cropstudio/internal/session"
	"github.com/example/cropstudio/internal/ui"
)

type studioCmd struct {
	*root
	fs     *flag.FlagSet
	folder string
	output string
}

func parseStudioCmd(args []string, r *root) (*studioCmd, error) {
	cmd := &studioCmd{
		root: r,
		fs:   flag.NewFlagSet("studio", flag.ExitOnError),
	}
	outputDefault := r.config.OutputDir
	if outputDefault == "" {
		outputDefault = export.DefaultOutputRoot
	}
	cmd.fs.StringVar(&cmd.folder, "folder", "", "image folder to open at startup")
	cmd.fs.StringVar(&cmd.output, "output", outputDefault, "root directory exported crops are written under")
	cmd.fs.Usage = usageFunc(cmd)
	if err := cmd.fs.Parse(args); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (s *studioCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func (s *studioCmd) Run() error {
	app := ui.New(
		ui.WithSession(session.New(s.config.ExportOptions())),
		ui.WithTheme(s.activeTheme),
		ui.WithNotifier(s.notifier),
		ui.WithOutputDir(s.output),
		ui.WithFolder(s.folder),
	)
	app.Run()
	return nil
}
