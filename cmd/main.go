package main

import (
	"context"
	"errors"
	"os"

	"github.com/djsadd/elibrary/internal/api"
	"github.com/djsadd/elibrary/internal/repositories"
	"github.com/djsadd/elibrary/internal/session"
	"github.com/djsadd/elibrary/internal/shared"
	"github.com/djsadd/elibrary/internal/source"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	// The durable session tier needs the local database; until setup has
	// run, sessions live only as long as the process.
	var durable session.Tier = session.NewMemoryTier()
	opts := RunnerOpts{Config: config, Logger: logger}
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			durable = repositories.NewSessionRepository(db)
			opts.DB = db
		} else {
			logger.Warnf("failed to open local database: %v", err)
		}
	}

	store := session.NewStore(durable, session.NewMemoryTier(), logger)
	client := api.NewClient(config.API.BaseURL, nil, store, logger)
	client.SetRateLimit(config.API.RequestsPerSec)

	opts.Session = store
	opts.API = client
	opts.Resolver = source.NewResolver(config.API.BaseURL, nil, store, logger, config.Reader.FallbackDocument)

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "elib",
		Usage:    "Read and track books from your digital library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
