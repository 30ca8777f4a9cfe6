// SPDX-License-Identifier: AGPL-3.0-only
package commands

import (
	"github.com/spf13/cobra"

	"github.com/softpaws/postharvest/internal/fetcher"
	"github.com/softpaws/postharvest/internal/helpers"
)

var flagChannels []string

var telegramCmd = &cobra.Command{
	Use:   "telegram [channel...]",
	Short: "Scrape Telegram channels",
	Long: `Scrapes the given public channels. Channels may be given as
arguments or via --channels, as plain usernames, @names, or t.me links;
with neither, the config file's default list is used. Uses the cloud
actors by default; with --backend session (or when only
TELEGRAM_API_ID/TELEGRAM_API_HASH are configured) it reads history
directly over a personal account session.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values := append(flagChannels, args...)
		return runScrape("telegram", fetcher.KindChannel, values, helpers.NormalizeChannel)
	},
}

func init() {
	telegramCmd.Flags().StringSliceVar(&flagChannels, "channels", nil, "channels to scrape")
	telegramCmd.Flags().StringVar(&flagActor, "actor", "", "actor to use (media, posts, messages)")
	telegramCmd.Flags().IntVar(&flagDays, "days", 0, "only posts from the last N days")
	telegramCmd.Flags().BoolVar(&flagEnrichViews, "enrich-views", false, "fill missing view counts from t.me embed pages")
	telegramCmd.Flags().StringVar(&flagBackend, "backend", "auto", "backend to use (auto, apify, session)")
	rootCmd.AddCommand(telegramCmd)
}
