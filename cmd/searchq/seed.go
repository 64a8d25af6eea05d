package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/searchq/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo fixture set into the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		if err := models.Seed(session); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		fmt.Println("seeded demo data")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
