package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/catalog"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/infrastructure/config"
	"github.com/ledgerline/backend/internal/infrastructure/logger"
	"github.com/ledgerline/backend/internal/infrastructure/migration"
	"github.com/ledgerline/backend/internal/infrastructure/persistence"
)

func main() {
	var migrationsPath string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the ledgerline database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "directory holding the migration files")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(migrationsPath, func(m *migration.Migrator) error {
					return m.Up()
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(migrationsPath, func(m *migration.Migrator) error {
					return m.Down()
				})
			},
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations, negative n rolls back",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return withMigrator(migrationsPath, func(m *migration.Migrator) error {
					return m.Steps(n)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(migrationsPath, func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					if version == 0 {
						fmt.Println("no migrations applied")
						return nil
					}
					fmt.Printf("version %d (dirty: %v)\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Overwrite the recorded schema version after a failed migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return withMigrator(migrationsPath, func(m *migration.Migrator) error {
					return m.Force(version)
				})
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Scaffold an empty up/down migration pair",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pair, err := migration.Scaffold(migrationsPath, args[0])
				if err != nil {
					return err
				}
				fmt.Println(pair.UpPath)
				fmt.Println(pair.DownPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the available migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := migration.List(migrationsPath)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			},
		},
		newSyncCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withMigrator opens the configured PostgreSQL database, runs fn against a
// migrator over it, and closes both
func withMigrator(migrationsPath string, fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

// newSyncCommand builds the model-driven schema sync for local SQLite
// development, where the versioned SQL migrations do not apply
func newSyncCommand() *cobra.Command {
	var sqlitePath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update a local SQLite schema directly from the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			log := logger.New(cfg.Log)
			defer log.Sync()

			db, err := persistence.NewSQLiteDatabase(sqlitePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			models := []interface{}{
				&catalog.Product{},
				&invoicing.Invoice{},
				&invoicing.InvoiceItem{},
				&invoicing.DocumentCounter{},
				&billing.RecurringTemplate{},
				&billing.TemplateItem{},
				&billing.GenerationRecord{},
				&finance.Payment{},
				&finance.LedgerEntry{},
				&finance.LedgerLine{},
			}
			if err := db.DB.AutoMigrate(models...); err != nil {
				return fmt.Errorf("sync schema: %w", err)
			}

			log.Info("schema synced", zap.Int("models", len(models)))
			return nil
		},
	}
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "ledgerline.db", "SQLite file to sync")
	return cmd
}
