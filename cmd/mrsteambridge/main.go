package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cybre/mrsteam-homekit/internal/config"
	"github.com/cybre/mrsteam-homekit/internal/control"
	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/cybre/mrsteam-homekit/internal/homekit"
	"github.com/cybre/mrsteam-homekit/internal/mrsteam"
	"github.com/cybre/mrsteam-homekit/internal/platform"
	"github.com/urfave/cli/v2"
	"go.mills.io/bitcask/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var envFile, devicesFile string
	var debug bool

	app := &cli.App{
		Name:  "mrsteambridge",
		Usage: "expose Mr.Steam generators to HomeKit through Voice Monkey",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "dotenv file to load before reading the environment",
				Destination: &envFile,
			},
			&cli.StringFlag{
				Name:        "devices",
				Usage:       "devices file, overrides DEVICES_FILE",
				Destination: &devicesFile,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}

			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if devicesFile != "" {
				cfg.DevicesFile = devicesFile
			}
			cfg.Debug = cfg.Debug || debug

			return run(c.Context, cfg)
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("bridge stopped", slog.String("stack", errors.Stack(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var loggerOpts *slog.HandlerOptions = nil
	if cfg.Debug {
		loggerOpts = &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, loggerOpts))
	slog.SetDefault(logger)

	devices, err := config.LoadDevices(cfg.DevicesFile)
	if err != nil {
		return err
	}
	cfg.Devices = devices

	slog.Debug("registered platforms", slog.Any("platforms", platform.Names()))

	factory, ok := platform.Get(mrsteam.PlatformName)
	if !ok {
		return errors.Errorf("platform %s is not registered", mrsteam.PlatformName)
	}

	p, err := factory(cfg)
	if err != nil {
		return errors.Wrapf(err, "start %s platform", mrsteam.PlatformName)
	}

	db, err := bitcask.Open(cfg.DatabasePath)
	if err != nil {
		return errors.Wrapf(err, "open bitcask database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("failed to close bitcask database", slog.Any("error", err))
		}
	}()

	server, err := homekit.NewServer(cfg, homekit.NewStore(db), p.Accessories()...)
	if err != nil {
		return err
	}

	slog.Info("starting bridge",
		slog.String("name", cfg.BridgeName),
		slog.String("pin", cfg.Pin),
		slog.Int("accessories", len(p.Accessories())),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(gctx); err != nil && gctx.Err() == nil {
			return errors.Wrapf(err, "hap server")
		}

		return nil
	})

	if cfg.ControlAddr != "" {
		ctl := control.New(cfg.ControlAddr, p)
		g.Go(func() error {
			return ctl.ListenAndServe(gctx)
		})
	}

	return g.Wait()
}
