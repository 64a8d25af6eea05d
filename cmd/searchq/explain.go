package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/searchq/providers/sqlbackend"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Translate a query to SQL without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := loadQuery()
		if err != nil {
			return err
		}
		session, err := openSession()
		if err != nil {
			return err
		}
		model, err := modelByName(flagModel)
		if err != nil {
			return err
		}
		provider, err := sqlbackend.New(session, model)
		if err != nil {
			return err
		}
		stmt, err := provider.Translate(cmd.Context(), q)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"sql":    stmt.SQL,
			"params": stmt.Params,
		})
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
