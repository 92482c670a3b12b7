// Command server runs the media catalog API.
//
//	server                      start the HTTP server (same as "server serve")
//	server migrate              create the schema and exit
//	server --config catalog.toml --env-file prod.env serve
//
// Configuration comes from defaults, an optional TOML file, an optional .env
// file and the environment; see internal/config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/sakif/media-catalog/internal/config"
	"github.com/sakif/media-catalog/internal/logging"
	"github.com/sakif/media-catalog/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "media-catalog",
		Usage: "music catalog API: users, albums, songs and their media",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				Sources: cli.EnvVars("CATALOG_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path to a .env file (default: ./.env when present)",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the database schema and exit",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger both commands share.
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.Options{
		ConfigPath: cmd.String("config"),
		EnvFile:    cmd.String("env-file"),
	})
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until ctx is cancelled by SIGINT or SIGTERM.
	return srv.Start(ctx)
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	db, err := server.OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	defer db.Close()

	logger.Info("schema is up to date",
		slog.String("driver", string(db.Dialect())),
	)
	return nil
}
