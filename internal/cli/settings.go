package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bryan-buckman/newsfront/internal/database"
	"github.com/bryan-buckman/newsfront/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change stored news API settings",
}

var pollIntervalCmd = &cobra.Command{
	Use:   "poll-interval [minutes]",
	Short: "Show or set the source polling interval",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 1 {
			mins, err := strconv.Atoi(args[0])
			if err != nil || mins < database.MinPollingIntervalMinutes {
				return fmt.Errorf("polling interval must be at least %d minutes", database.MinPollingIntervalMinutes)
			}
			if err := db.SetSetting(model.SettingPollingInterval, strconv.Itoa(mins)); err != nil {
				return fmt.Errorf("save setting: %w", err)
			}
		}

		mins, err := db.GetPollingInterval()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d minutes\n", mins)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(pollIntervalCmd)
}
