package main

import (
	"fmt"

	"github.com/dfryer1193/wizardry/internal/config"
	"github.com/dfryer1193/wizardry/wizard/application"
	"github.com/spf13/cobra"
)

func newSweepCmd(cfg *config.Config) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Report image files that no wizard references",
		Long: "Sweep lists files in the attachment root that no wizard record points at,\n" +
			"such as files left behind when an upload failed after writing to disk.\n" +
			"Files newer than WIZARDRY_SWEEP_GRACE are ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			result, err := application.NewSweeper(b.repo, b.store, cfg.SweepGrace).Sweep(cmd.Context(), remove)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range result.Orphans {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintln(out, result.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "remove the orphaned files")

	return cmd
}
