// SPDX-License-Identifier: AGPL-3.0-only
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/softpaws/postharvest/internal/updater"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var flagVersionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("postharvest", Version)

		if flagVersionCheck {
			latest, available, err := updater.Check(cmd.Context(), Version)
			if err != nil {
				return err
			}
			if available {
				fmt.Printf("update available: %s\n", latest)
			} else {
				fmt.Printf("latest published: %s\n", latest)
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check for a newer release")
	rootCmd.AddCommand(versionCmd)
}
