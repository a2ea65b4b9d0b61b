package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SscSPs/lecturer_claims_app/internal/platform/config"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "claims_backend",
		Short: "Contract lecturer claims API",
		Long: `claims_backend serves the lecturer claims API.
Run without a subcommand to migrate, provision and start the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
			slog.SetDefault(a.logger)

			cfg, err := config.LoadConfig()
			if err != nil {
				a.logger.Error("Failed to load config", slog.String("error", err.Error()))
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	serve := newServeCmd(a)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(a), newSeedCmd(a))
	return root
}
