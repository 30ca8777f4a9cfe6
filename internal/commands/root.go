// SPDX-License-Identifier: AGPL-3.0-only

// Package commands is the cobra command surface of the postharvest CLI.
package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool

	flagOut      string
	flagOutJSON  string
	flagOutExcel string
	flagFormats  []string

	flagDateFrom string
	flagDateTo   string
	flagKeywords []string
	flagMinViews int

	flagActor        string
	flagLimit        int
	flagDays         int
	flagSort         string
	flagLang         string
	flagMemoryMB     int
	flagWaitTimeout  time.Duration
	flagPollInterval time.Duration
	flagEnrichViews  bool
	flagResume       string
	flagBackend      string
)

var rootCmd = &cobra.Command{
	Use:   "postharvest",
	Short: "Scrape social posts through cloud actors into CSV, JSON, and XLSX",
	Long: `postharvest submits scrape jobs to cloud actors (or a personal
Telegram session), waits for them to finish, and normalizes the results
into one canonical record shape before exporting.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default ./postharvest.toml)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&flagOut, "out", "", "CSV output path")
	pf.StringVar(&flagOutJSON, "out-json", "", "JSON output path")
	pf.StringVar(&flagOutExcel, "out-excel", "", "XLSX output path")
	pf.StringSliceVar(&flagFormats, "formats", []string{"csv"}, "formats to export (csv, json, xlsx)")
	pf.StringVar(&flagDateFrom, "date-from", "", "keep posts on or after this date")
	pf.StringVar(&flagDateTo, "date-to", "", "keep posts on or before this date")
	pf.StringSliceVar(&flagKeywords, "keywords", nil, "keep posts containing any of these keywords")
	pf.IntVar(&flagMinViews, "min-views", 0, "keep posts with at least this many views")
	pf.IntVar(&flagLimit, "limit", 100, "max posts per target")
	pf.IntVar(&flagMemoryMB, "memory-mb", 1024, "actor run memory")
	pf.DurationVar(&flagWaitTimeout, "wait-timeout", 10*time.Minute, "max time to wait for a run")
	pf.DurationVar(&flagPollInterval, "poll-interval", 10*time.Second, "run status poll interval")
	pf.StringVar(&flagResume, "resume", "", "resume a previous invocation by id, skipping succeeded targets")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
