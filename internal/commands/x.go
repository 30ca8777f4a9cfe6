// SPDX-License-Identifier: AGPL-3.0-only
package commands

import (
	"github.com/spf13/cobra"

	"github.com/softpaws/postharvest/internal/fetcher"
	"github.com/softpaws/postharvest/internal/helpers"
)

var (
	flagHandles  []string
	flagXSearch  string
	flagMaxPosts int
)

var xCmd = &cobra.Command{
	Use:   "x [handle...]",
	Short: "Scrape X profiles or searches",
	Long: `Scrapes the given X handles (arguments or --handles; plain, @name,
or profile links; config file defaults otherwise). With --search the given
term is scraped instead of profiles.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMaxPosts > 0 {
			flagLimit = flagMaxPosts
		}

		if flagXSearch != "" {
			if flagActor == "" {
				flagActor = "search"
			}
			return runScrape("x", fetcher.KindSearch, []string{flagXSearch}, nil)
		}

		if flagActor == "" {
			flagActor = "full"
		}
		values := append(flagHandles, args...)
		return runScrape("x", fetcher.KindHandle, values, helpers.NormalizeHandle)
	},
}

func init() {
	xCmd.Flags().StringSliceVar(&flagHandles, "handles", nil, "handles to scrape")
	xCmd.Flags().StringVar(&flagXSearch, "search", "", "scrape a search term instead of profiles")
	xCmd.Flags().StringVar(&flagActor, "actor", "", "actor to use (ppr, search, full)")
	xCmd.Flags().IntVar(&flagMaxPosts, "max-posts", 0, "max posts per target (overrides --limit)")
	xCmd.Flags().StringVar(&flagSort, "sort", "Latest", "result order (Latest, Top)")
	xCmd.Flags().StringVar(&flagLang, "lang", "", "restrict results to a language code")
	rootCmd.AddCommand(xCmd)
}
