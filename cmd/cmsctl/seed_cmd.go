package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/smk-cms-api/internal/repository"
	"github.com/noah-isme/smk-cms-api/internal/service"
)

type seedOutput struct {
	Command    string               `json:"command"`
	DurationMS int64                `json:"duration_ms"`
	Results    []service.SeedResult `json:"results"`
}

func newSeedCmd(rt *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default content into empty tables",
		Long: "Seeds default menus, programs, beranda sections and settings. " +
			"Tables that already hold rows are left untouched, so the command is safe to rerun.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			start := time.Now()
			results, err := service.NewSeedService(repository.NewSeedRepository(db), rt.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), seedOutput{
				Command:    "seed",
				DurationMS: time.Since(start).Milliseconds(),
				Results:    results,
			})
		},
	}
}
