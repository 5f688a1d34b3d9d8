package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/smk-cms-api/pkg/database"
)

func newMigrateCmd(rt *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}
	cmd.AddCommand(
		migrateStep(rt, "up", "Apply all pending migrations", (*database.Migrator).Up),
		migrateStep(rt, "down", "Roll back the most recent migration", (*database.Migrator).Down),
		migrateStep(rt, "status", "Print the applied state of every migration", (*database.Migrator).Status),
	)
	return cmd
}

func migrateStep(rt *cliEnv, use, short string, step func(*database.Migrator, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			migrator, err := database.NewMigrator(db.DB, rt.logger)
			if err != nil {
				return err
			}
			return step(migrator, cmd.Context())
		},
	}
}
