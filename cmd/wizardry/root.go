package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dfryer1193/wizardry/internal/config"
	"github.com/dfryer1193/wizardry/shared/db/sqlite"
	"github.com/dfryer1193/wizardry/wizard/persistence"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	dbPath   string
	filesDir string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "wizardry",
		Short:         "Wizard records with attached images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if flags.dbPath != "" {
				loaded.SQLite.Path = flags.dbPath
			}
			if flags.filesDir != "" {
				loaded.FilesDir = flags.filesDir
			}

			setupLogging(loaded)
			*cfg = *loaded
			return nil
		},
	}
	cfg = &config.Config{}

	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH or ./wizardry.db)")
	root.PersistentFlags().StringVar(&flags.filesDir, "files-dir", "", "attachment root (default: $WIZARDRY_FILES_DIR or ./files)")

	root.AddCommand(newServeCmd(cfg))
	root.AddCommand(newMigrateCmd(cfg))
	root.AddCommand(newSweepCmd(cfg))

	return root
}

func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// backend holds the opened database and attachment root.
type backend struct {
	database *sqlite.SQLiteDB
	repo     *persistence.SQLiteWizardRepository
	store    *persistence.FileAttachmentStore
}

func openBackend(cfg *config.Config) (*backend, error) {
	database := sqlite.NewSQLiteDB(&cfg.SQLite)
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := persistence.NewFileAttachmentStore(cfg.FilesDir)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &backend{
		database: database,
		repo:     persistence.NewWizardRepository(database.DB()),
		store:    store,
	}, nil
}

func (b *backend) Close() {
	if err := b.database.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}
