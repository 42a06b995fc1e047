package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the counter of the active window",
		Long:  "Show the counter of the active window without consuming quota.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			limiter, err := a.openLimiter(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = limiter.Close() }()

			res, err := limiter.Peek(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printf(out, "store:     %s\n", cfg.Store.Backend)
			printf(out, "quota:     %s\n", limiter.Config())
			printf(out, "key:       %s\n", res.Key)
			printf(out, "count:     %d/%d\n", res.Count, res.Limit)
			printf(out, "remaining: %d\n", res.Remaining)
			printf(out, "decision:  %s\n", res.Decision)
			if !res.Reset.IsZero() {
				printf(out, "resets:    %s\n", res.Reset.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}
