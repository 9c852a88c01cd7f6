package main

import (
	"fmt"
	"os"

	"nutriportions/config"
	"nutriportions/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	sqlitePath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "nutrictl",
	Short: "nutrictl administers a nutriportions database",
	Long:  "nutrictl runs migrations, imports the food bank and checks portion and body composition math from the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(logLevel, true)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Path to a SQLite database (default: use the DB_* environment)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")
}

// withDB opens and migrates the database selected by --sqlite or the
// environment, then runs fn.
func withDB(fn func(db *gorm.DB) error) error {
	var cfg *config.Config
	if sqlitePath != "" {
		cfg = &config.Config{DBDriver: "sqlite", SQLitePath: sqlitePath}
	} else {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(db)
}
