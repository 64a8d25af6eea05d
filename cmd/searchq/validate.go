package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/searchq"
	"github.com/oxhq/searchq/registry"
)

var flagBackend string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a query against one backend's operator set",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := loadQuery()
		if err != nil {
			return err
		}
		backend := registry.Memory
		if flagBackend == "sql" {
			backend = registry.SQL
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := searchq.Validate(q, backend); err != nil {
			return enc.Encode(map[string]any{"valid": false, "error": err.Error()})
		}
		return enc.Encode(map[string]any{"valid": true})
	},
}

func init() {
	validateCmd.Flags().StringVar(&flagBackend, "backend", "memory", "backend operator set (memory or sql)")
	rootCmd.AddCommand(validateCmd)
}
