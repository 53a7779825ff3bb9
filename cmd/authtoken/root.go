package main

import (
	"encoding/json"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	auth "github.com/goliatone/go-userauth"
)

type app struct {
	lookup  func(string) (string, bool)
	envFile string
	debug   bool

	zap    *zap.Logger
	logger auth.Logger
}

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	a := &app{lookup: lookup}

	root := &cobra.Command{
		Use:   "authtoken",
		Short: "Issue and inspect auth session tokens",
		Long: `authtoken mints and inspects the signed session tokens used by the
user management backend. Configuration is read from AUTH_JWT_* variables,
optionally loaded from a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging on stderr")

	root.AddCommand(newIssueCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newHashCmd())
	root.AddCommand(newUserCmd(a))

	return root
}

func (a *app) load() error {
	if a.envFile != "" {
		// a missing file is fine, the environment may already be set
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if a.debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		a.zap = l
	} else {
		a.zap = zap.NewNop()
	}
	a.logger = auth.NewZapLogger(a.zap)

	return nil
}

// config reads the token settings, only commands touching tokens need them
func (a *app) config() (auth.Config, error) {
	cfg, err := auth.ConfigFromEnv(a.lookup)
	if err != nil {
		return auth.Config{}, err
	}

	a.logger.Debug("config loaded", "issuer", cfg.Issuer, "access_ttl", cfg.AccessTTL.String(), "refresh_ttl", cfg.RefreshTTL.String())

	return cfg, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
