package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"musiccatalog/internal/logging"
)

func main() {
	_ = godotenv.Load("config/local.env")
	logging.Setup(logging.Config{Level: "info", Format: "text", Output: os.Stderr})

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back music catalog schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Usage:   "PostgreSQL connection URL",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Directory holding the migration files",
				Value:   "migrations",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withMigrator(func(_ context.Context, m *migrate.Migrate, _ *cli.Command) error {
					if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("apply migrations: %w", err)
					}
					log.Info().Msg("Migrations applied successfully")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Usage: "Number of migrations to roll back, 0 rolls back all",
						Value: 1,
					},
				},
				Action: withMigrator(func(_ context.Context, m *migrate.Migrate, cmd *cli.Command) error {
					var err error
					if steps := int(cmd.Int("steps")); steps > 0 {
						err = m.Steps(-steps)
					} else {
						err = m.Down()
					}
					if err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("roll back migrations: %w", err)
					}
					log.Info().Msg("Migrations rolled back successfully")
					return nil
				}),
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: withMigrator(func(_ context.Context, m *migrate.Migrate, _ *cli.Command) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						log.Info().Msg("No migrations applied")
						return nil
					}
					if err != nil {
						return fmt.Errorf("read version: %w", err)
					}
					log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
					return nil
				}),
			},
			{
				Name:  "force",
				Usage: "Mark a version as applied without running it, clearing the dirty flag",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "version",
						Usage:    "Version to record",
						Required: true,
					},
				},
				Action: withMigrator(func(_ context.Context, m *migrate.Migrate, cmd *cli.Command) error {
					version := int(cmd.Int("version"))
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force version %d: %w", version, err)
					}
					log.Info().Int("version", version).Msg("Schema version forced")
					return nil
				}),
			},
		},
	}
}

type migrateAction func(ctx context.Context, m *migrate.Migrate, cmd *cli.Command) error

// withMigrator opens the database named by the root flags and hands a
// migrator to fn.
func withMigrator(fn migrateAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		dsn := cmd.String("database-url")
		if dsn == "" {
			return errors.New("database URL is required (--database-url or DATABASE_URL)")
		}

		sourceURL, err := sourceURL(cmd.String("path"))
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		driver, err := postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			return fmt.Errorf("create postgres driver: %w", err)
		}

		m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
		if err != nil {
			return fmt.Errorf("create migrate instance: %w", err)
		}
		defer m.Close()

		return fn(ctx, m, cmd)
	}
}

func sourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve migrations path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("migrations path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
