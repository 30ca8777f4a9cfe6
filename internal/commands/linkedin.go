// SPDX-License-Identifier: AGPL-3.0-only
package commands

import (
	"github.com/spf13/cobra"

	"github.com/softpaws/postharvest/internal/fetcher"
	"github.com/softpaws/postharvest/internal/helpers"
)

var flagProfiles []string

var linkedinCmd = &cobra.Command{
	Use:   "linkedin [profile...]",
	Short: "Scrape LinkedIn profile posts",
	Long: `Scrapes posts from the given profiles (arguments or --profiles;
usernames or /in/ links; config file defaults otherwise).`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMaxPosts > 0 {
			flagLimit = flagMaxPosts
		}
		values := append(flagProfiles, args...)
		return runScrape("linkedin", fetcher.KindProfile, values, helpers.NormalizeProfile)
	},
}

func init() {
	linkedinCmd.Flags().StringSliceVar(&flagProfiles, "profiles", nil, "profiles to scrape")
	linkedinCmd.Flags().StringVar(&flagActor, "actor", "", "actor to use (profile-posts)")
	linkedinCmd.Flags().IntVar(&flagMaxPosts, "max-posts", 0, "max posts per target (overrides --limit)")
	rootCmd.AddCommand(linkedinCmd)
}
