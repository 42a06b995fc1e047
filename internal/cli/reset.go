package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func (a *app) newResetCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the counter of the active window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset requires --yes")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			limiter, err := a.openLimiter(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = limiter.Close() }()

			key := limiter.Key()
			if err := limiter.Reset(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "reset %s\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
