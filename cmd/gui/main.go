package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kagahq/kaga/internal/app"
	"github.com/kagahq/kaga/internal/ui"
)

type launchOptions struct {
	ConfigDir string
	Profile   string
}

func parseLaunchOptions(args []string) (launchOptions, error) {
	var opts launchOptions
	fs := flag.NewFlagSet(app.Name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.ConfigDir, "config-dir", "", "directory holding config, profiles and logs")
	fs.StringVar(&opts.Profile, "profile", "", "profile to open instead of the configured one")
	if err := fs.Parse(args); err != nil {
		return launchOptions{}, err
	}
	if fs.NArg() > 0 {
		return launchOptions{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return opts, nil
}

func main() {
	opts, err := parseLaunchOptions(os.Args[1:])
	if err != nil {
		slog.Error("parse launch options", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Initialize(ctx, app.Options{ConfigDir: opts.ConfigDir, Profile: opts.Profile})
	if err != nil {
		slog.Error("initialize app runtime", "error", err)
		os.Exit(1)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			if err := rt.Close(); err != nil {
				slog.Warn("close app runtime", "error", err)
			}
		})
	}
	defer closeRuntime()

	err = ui.Run(ui.Dependencies{
		Data: ui.DataDependencies{
			Config:  rt.CurrentConfig(),
			Profile: rt.Profile,
		},
		Actions: ui.ActionDependencies{
			OnExport: rt.ExportProfile,
			OnQuit: func() {
				stop()
				closeRuntime()
			},
		},
	})
	if err != nil {
		slog.Error("run ui", "error", err)
		os.Exit(1)
	}
}
