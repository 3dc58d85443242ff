package cli

import (
	"log/slog"

	"github.com/hkr-team/assessment-engine/internal/config"
	"github.com/hkr-team/assessment-engine/pkg"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies the database schema and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if _, err := pkg.InitDatabase(cfg); err != nil {
				return err
			}
			slog.Info("Schema migrations applied")
			return nil
		},
	}
}
