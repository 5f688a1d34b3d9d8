package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/pkg/config"
	"github.com/noah-isme/smk-cms-api/pkg/database"
	"github.com/noah-isme/smk-cms-api/pkg/logger"
)

// cliEnv is shared by subcommands once the root has loaded configuration.
type cliEnv struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	rt := &cliEnv{}
	cmd := &cobra.Command{
		Use:           "cmsctl",
		Short:         "Operational tasks for the SMK CMS API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			rt.cfg = cfg
			rt.logger = logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}
	cmd.AddCommand(newMigrateCmd(rt))
	cmd.AddCommand(newSeedCmd(rt))
	return cmd
}

func (rt *cliEnv) connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := database.NewPostgres(ctx, rt.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
