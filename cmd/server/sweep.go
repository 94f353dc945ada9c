package main

import (
	"fmt"

	"github.com/dom/socialnet/internal/repository/postgres"
	"github.com/dom/socialnet/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-tokens",
	Short: "Delete token pairs whose refresh token expired more than a day ago",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}

		repos := postgres.NewRepositories(db)
		tokens := service.NewTokenService(repos.User, repos.Token, cfg)

		deleted, err := tokens.Sweep(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		log.Info().Int64("deleted", deleted).Msg("token sweep finished")
		return nil
	},
}
