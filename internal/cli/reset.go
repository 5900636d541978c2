package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/config"
	"feedbacker-service/internal/domain"
)

// NewResetCmd deletes every response and completion marker of the event.
func NewResetCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all responses of the event (irreversible)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg)

			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			host := app.NewHostService(b.store, app.NewResponseStore(b.store), app.NewPrizeDesk(b.store, b.leaderboard))
			if err := host.ResetResponses(cmd.Context(), yes); err != nil {
				if errors.Is(err, domain.ErrConfirmationRequired) {
					return fmt.Errorf("refusing to delete responses without --yes")
				}
				return err
			}
			slog.Info("responses reset", "event", cfg.Event.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting every response")
	return cmd
}
