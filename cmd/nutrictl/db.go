package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"nutriportions/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		})
	},
}

var importFoodCmd = &cobra.Command{
	Use:   "import-food-bank <file.csv>",
	Short: "Upsert food bank items from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return withDB(func(db *gorm.DB) error {
			n, err := services.NewFoodBankService(db).ImportCSV(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d food bank items\n", n)
			return nil
		})
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote-admin <email>",
	Short: "Give an existing account the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			if err := services.NewProfileService(db, nil, nil, nil).PromoteAdmin(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
			return nil
		})
	},
}

var notifyTimezone string

var notifyCmd = &cobra.Command{
	Use:   "notify-once",
	Short: "Evaluate notification templates once, delivering over the realtime channel only",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := time.LoadLocation(notifyTimezone)
		if err != nil {
			return err
		}
		return withDB(func(db *gorm.DB) error {
			logs := services.NewDailyLogService(db, loc)
			push := services.NewPushService(db, nil, "", "", nil)
			n, err := services.NewScheduler(db, logs, push, 0).RunOnce(context.Background(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d notifications\n", n)
			return nil
		})
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyTimezone, "tz", "Asia/Jerusalem", "Timezone used to evaluate templates")
	rootCmd.AddCommand(migrateCmd, importFoodCmd, promoteCmd, notifyCmd)
}
