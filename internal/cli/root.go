// Package cli implements the askai-gateway command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	askailimiter "github.com/ajiwo/askailimiter"
	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/internal/observability"
)

// VersionInfo is set by the main package from ldflags
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	version VersionInfo
}

// NewRootCommand builds the command tree. Each call gets its own viper instance.
func NewRootCommand(version VersionInfo) *cobra.Command {
	a := &app{v: newViper(), version: version}

	root := &cobra.Command{
		Use:   "askai-gateway",
		Short: "Admission-controlled reverse proxy for the askai API",
		Long: `askai-gateway forwards requests to the askai API and rejects them with
429 once the configured quota for the current window is used up.

Configuration is read from --config, then ASKAI_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfigFile(a.v, a.cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.String("store", "", "store backend: "+fmt.Sprint(backends.Registered()))
	_ = a.v.BindPFlag("store.backend", flags.Lookup("store"))

	root.AddCommand(
		a.newServeCommand(),
		a.newStatusCommand(),
		a.newResetCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// Execute runs the command tree with os.Args
func Execute(version VersionInfo) error {
	return NewRootCommand(version).Execute()
}

func (a *app) loadConfig() (*Config, error) {
	cfg, err := decodeConfig(a.v)
	if err != nil {
		return nil, err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// limiterOptions translates the quota settings for the library API
func limiterOptions(cfg *Config, store backends.Backend) []askailimiter.Option {
	opts := []askailimiter.Option{
		askailimiter.WithBackend(store),
		askailimiter.WithConfigText(cfg.Quota),
		askailimiter.WithKeyPrefix(cfg.KeyPrefix),
		askailimiter.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.NoExpiry {
		opts = append(opts, askailimiter.WithoutExpiry())
	}
	return opts
}

// openLimiter opens the configured store and builds a limiter over it. The
// limiter owns the store.
func (a *app) openLimiter(cfg *Config) (*askailimiter.Limiter, error) {
	store, err := openStore(cfg, zap.NewNop())
	if err != nil {
		return nil, err
	}
	limiter, err := askailimiter.New(limiterOptions(cfg, store)...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return limiter, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
