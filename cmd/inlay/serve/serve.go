// Package servecmder provides the attribution API server cobra command.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/api"
	"github.com/papercomputeco/inlay/pkg/attrstore"
	"github.com/papercomputeco/inlay/pkg/attrstore/inmemory"
	"github.com/papercomputeco/inlay/pkg/attrstore/postgres"
	"github.com/papercomputeco/inlay/pkg/attrstore/sqlite"
	"github.com/papercomputeco/inlay/pkg/config"
	"github.com/papercomputeco/inlay/pkg/logger"
)

type serveCommander struct {
	listen      string
	provider    string
	sqlitePath  string
	postgresDSN string
	debug       bool
	logger      *zap.Logger
}

// serveFlags defines the flags this command registers and their viper keys.
var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagStorageProvider: {
		Name:        "storage",
		ViperKey:    "storage.provider",
		Description: "Attribution store provider (inmemory, sqlite, postgres)",
	},
	config.FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite database (default: in-memory database file)",
	},
	config.FlagPostgresDSN: {
		Name:        "postgres-dsn",
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL DSN when the storage provider is postgres",
	},
}

const serveLongDesc string = `Run the inlay attribution API server.

The server stores per-line authorship records posted by agent trackers and
answers the attribution queries issued by editor hosts.

Values resolve with the usual precedence: flags, then INLAY_* environment
variables, then config.toml, then defaults.`

const serveShortDesc string = "Run the attribution API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, []string{
				config.FlagAPIListen,
				config.FlagStorageProvider,
				config.FlagSQLite,
				config.FlagPostgresDSN,
			})

			cmder.listen = v.GetString("api.listen")
			cmder.provider = v.GetString("storage.provider")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresDSN = v.GetString("storage.postgres_dsn")

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagStorageProvider, &cmder.provider)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	store, err := c.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.NewServer(api.Config{ListenAddr: c.listen}, store, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *serveCommander) newStore() (attrstore.Store, error) {
	switch c.provider {
	case "sqlite":
		path := c.sqlitePath
		if path == "" {
			path = "inlay.db"
		}

		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		c.logger.Info("using SQLite storage", zap.String("path", path))
		return store, nil

	case "postgres":
		if c.postgresDSN == "" {
			return nil, fmt.Errorf("storage.postgres_dsn is required for the postgres provider")
		}

		store, err := postgres.NewStore(context.Background(), c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres store: %w", err)
		}
		c.logger.Info("using Postgres storage")
		return store, nil

	case "inmemory":
		c.logger.Info("using in-memory storage")
		return inmemory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider %q (available: inmemory, sqlite, postgres)", c.provider)
	}
}
