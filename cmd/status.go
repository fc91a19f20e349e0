package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration and device identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()

		tracking := "enabled"
		if !c.Enabled() {
			tracking = "disabled"
		}
		user := c.UserID
		if user == "" {
			user = "(not set)"
		}

		cmd.Printf("Transport: %s\n", c.Transport)
		if err := c.Validate(); err != nil {
			cmd.Printf("Transport error: %v\n", err)
		}
		cmd.Printf("Tracking: %s\n", tracking)
		cmd.Printf("Report interval: %s\n", c.ReportInterval())
		cmd.Printf("Flush threshold: %s\n", c.FlushThreshold())
		cmd.Printf("User: %s\n", user)
		cmd.Printf("Device ID: %s\n", newIdentity(logger).DeviceID(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
