package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/filter"
	"github.com/ajiwo/askailimiter/internal/gateway"
	"github.com/ajiwo/askailimiter/internal/healthchecker"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

func (a *app) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		Long: `Run the reverse proxy with the admission filter in front of the askai API.

SIGINT or SIGTERM shut the server down gracefully. SIGHUP re-reads the config
file and applies its quota on top of the current one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "", "listen address")
	flags.String("upstream", "", "askai API base URL")
	flags.String("quota", "", `quota, e.g. "limit=200,window=86400"`)
	_ = a.v.BindPFlag("server.listen", flags.Lookup("listen"))
	_ = a.v.BindPFlag("server.upstream", flags.Lookup("upstream"))
	_ = a.v.BindPFlag("quota", flags.Lookup("quota"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger, err := a.newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	strategyOpts := []fixedwindow.Option{
		fixedwindow.WithKeyPrefix(cfg.KeyPrefix),
		fixedwindow.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.NoExpiry {
		strategyOpts = append(strategyOpts, fixedwindow.WithoutExpiry())
	}
	filterOpts := []filter.Option{
		filter.WithLogger(logger.Named("filter")),
		filter.WithRateLimitHeaders(cfg.RateLimitHeaders),
		filter.WithStrategyOptions(strategyOpts...),
	}
	if cfg.DenyMessage != "" {
		filterOpts = append(filterOpts, filter.WithDenyMessage(cfg.DenyMessage))
	}
	root, err := filter.Configure([]byte(cfg.Quota), store, filterOpts...)
	if err != nil {
		return err
	}

	checker := healthchecker.New(store, nil,
		healthchecker.WithTimeout(cfg.Failover.ProbeTimeout),
		healthchecker.WithLogger(logger.Named("readyz")),
	)

	srv, err := gateway.New(gateway.Config{
		Listen:            cfg.Server.Listen,
		Upstream:          cfg.Server.Upstream,
		Path:              cfg.Server.Path,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, root, checker, logger)
	if err != nil {
		return err
	}

	go a.reloadOnHangup(ctx, srv, logger)
	return srv.Run(ctx)
}

// reloadOnHangup re-reads the config file on SIGHUP and pushes the quota text
// to the running filter.
func (a *app) reloadOnHangup(ctx context.Context, srv *gateway.Server, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := a.reload(srv); err != nil {
				logger.Warn("config reload failed", zap.Error(err))
			}
		}
	}
}

func (a *app) reload(srv *gateway.Server) error {
	if err := readConfigFile(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	srv.Reconfigure([]byte(cfg.Quota))
	return nil
}
