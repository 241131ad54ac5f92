package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashwinyue/travacasa/internal/database"
	"github.com/ashwinyue/travacasa/internal/repository"
	"github.com/ashwinyue/travacasa/internal/seed"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the listing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AutoMigrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrated listings and reviews")
			return nil
		},
	}
}

func newSeedCmd(configPath *string) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample listings",
		Long:  "Loads the sample listings into an empty catalogue. Use --reset to replace existing listings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AutoMigrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			ctx := cmd.Context()
			if reset {
				if err := repository.NewListingRepository(db.DB).DeleteAll(ctx); err != nil {
					return fmt.Errorf("reset listings: %w", err)
				}
			}

			n, err := seed.Run(ctx, db.DB, time.Now())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Listings already present, nothing to seed")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d listings\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing listings before seeding")
	return cmd
}
