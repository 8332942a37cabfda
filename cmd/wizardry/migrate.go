package main

import (
	"github.com/dfryer1193/wizardry/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			version, err := b.database.SchemaVersion()
			if err != nil {
				return err
			}

			log.Info().Int("version", version).Str("db", cfg.SQLite.Path).Msg("Database is up to date")
			return nil
		},
	}
}
