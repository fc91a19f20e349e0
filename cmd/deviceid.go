package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deviceIDClear bool

var deviceIDCmd = &cobra.Command{
	Use:   "device-id",
	Short: "Show or reset the identifier watch reports are attributed to",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := newIdentity(logger)

		if deviceIDClear {
			if err := identity.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Device id cleared.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), identity.DeviceID(cmd.Context()))
		return nil
	},
}

func init() {
	deviceIDCmd.Flags().BoolVar(&deviceIDClear, "clear", false, "Forget the stored device id")
	rootCmd.AddCommand(deviceIDCmd)
}
