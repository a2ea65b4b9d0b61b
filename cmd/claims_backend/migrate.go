package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/lecturer_claims_app/pkg/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := database.Up
			if len(args) == 1 {
				dir = database.Direction(args[0])
			}
			if dir != database.Up && dir != database.Down {
				return fmt.Errorf("unknown direction %q, expected up or down", args[0])
			}
			return database.Migrate(a.cfg.DatabaseURL, a.cfg.MigrationsPath, dir, a.logger)
		},
	}
}
