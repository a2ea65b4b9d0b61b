package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/core/services"
	"github.com/SscSPs/lecturer_claims_app/internal/platform/seed"
	"github.com/SscSPs/lecturer_claims_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/lecturer_claims_app/pkg/database"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision roles and the users listed in the seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.SeedFile
			}
			ctx := cmd.Context()
			pool, err := database.NewPgxPool(ctx, a.cfg.DatabaseURL, true, a.logger)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(pool, a.logger)

			repos := pgsql.NewRepositoryProvider(pool)
			return provision(ctx, a.logger, services.NewProvisioningService(repos.UserRepo, nil), file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed file (defaults to SEED_FILE)")
	return cmd
}

// provision ensures every role and the users listed in file.
func provision(ctx context.Context, logger *slog.Logger, svc portssvc.ProvisioningSvc, file string) error {
	users, err := seed.LoadFile(file)
	if err != nil {
		return err
	}
	if err := svc.Provision(ctx, users); err != nil {
		return fmt.Errorf("failed to provision seed users: %w", err)
	}
	logger.Info("Provisioned roles and seed users", slog.String("file", file), slog.Int("users", len(users)))
	return nil
}
