package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/oxhq/searchq/db"
	"github.com/oxhq/searchq/models"
)

var (
	flagDSN   string
	flagPG    string
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "searchq",
	Short: "Run structured queries against a database or JSON records",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; flags beat environment.
		_ = godotenv.Load()
		if flagDSN == "" {
			flagDSN = os.Getenv("SEARCHQ_DB_DSN")
		}
		if flagPG == "" {
			flagPG = os.Getenv("SEARCHQ_PG_DSN")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDSN, "db", "", "sqlite DSN (file path or libsql URL)")
	rootCmd.PersistentFlags().StringVar(&flagPG, "pg", "", "postgres DSN")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log SQL statements")
}

func openSession() (*gorm.DB, error) {
	switch {
	case flagPG != "":
		return db.ConnectPostgres(flagPG, flagDebug)
	case flagDSN != "":
		return db.Connect(flagDSN, flagDebug)
	}
	return nil, fmt.Errorf("no database configured: pass --db, --pg, or set SEARCHQ_DB_DSN")
}

func modelByName(name string) (any, error) {
	switch strings.ToLower(name) {
	case "task", "tasks":
		return &models.Task{}, nil
	case "user", "users":
		return &models.User{}, nil
	case "node", "nodes":
		return &models.Node{}, nil
	case "profile", "profiles":
		return &models.Profile{}, nil
	case "address", "addresses":
		return &models.Address{}, nil
	}
	return nil, fmt.Errorf("unknown model %q", name)
}
