// SPDX-License-Identifier: AGPL-3.0-only
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/apify"
	"github.com/softpaws/postharvest/internal/config"
	"github.com/softpaws/postharvest/internal/exports"
	"github.com/softpaws/postharvest/internal/fetcher"
	"github.com/softpaws/postharvest/internal/history"
	"github.com/softpaws/postharvest/internal/logging"
	"github.com/softpaws/postharvest/internal/record"
	"github.com/softpaws/postharvest/internal/worker"
)

// runScrape is the shared body of the platform commands: build targets and
// options from flags, pick a backend, run, report.
func runScrape(platform, kind string, values []string, normalize func(string) string) error {
	logger, err := logging.New(flagVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	opts, err := buildOptions(platform)
	if err != nil {
		return err
	}

	// Config file defaults kick in when no targets came from the command
	// line; searches never fall back to them.
	if len(values) == 0 && kind != fetcher.KindSearch {
		values = cfg.DefaultTargets(platform)
	}

	targets := make([]fetcher.Target, 0, len(values))
	for _, v := range values {
		if normalize != nil {
			v = normalize(v)
		}
		if v == "" {
			continue
		}
		targets = append(targets, fetcher.Target{Kind: kind, Value: v})
	}
	if len(targets) == 0 {
		return errors.New("no targets: pass them as arguments or set defaults in the config file")
	}

	backend, err := selectBackend(platform, cfg, logger)
	if err != nil {
		return err
	}

	req, err := exportRequest(platform)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warnw("history ledger unavailable", "path", cfg.History.Path, "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	invocationID := uuid.NewString()
	var resume map[string]bool
	if flagResume != "" {
		if store == nil {
			return errors.New("--resume needs the history ledger")
		}
		invocationID = flagResume
		resume, err = store.SucceededLabels(ctx, flagResume)
		if err != nil {
			return err
		}
	}

	runner := &worker.Runner{
		Backend:      backend,
		Filter:       buildFilter(opts),
		Exports:      req,
		History:      store,
		InvocationID: invocationID,
		Resume:       resume,
		Logger:       logger,
	}

	res, err := runner.Run(ctx, targets, opts)
	if err != nil {
		if res != nil {
			fmt.Print(runner.Summary(res))
		}
		return err
	}

	fmt.Print(runner.Summary(res))
	if res.Failed() {
		return errors.Newf("completed with %d failure(s)", len(res.Failures))
	}
	return nil
}

// selectBackend picks the session backend for Telegram when asked for
// explicitly or when only session credentials are configured; everything
// else goes through the cloud platform.
func selectBackend(platform string, cfg *config.Config, logger *zap.SugaredLogger) (fetcher.Backend, error) {
	switch flagBackend {
	case "", "auto", "apify", "session":
	default:
		return nil, errors.Newf("unknown backend %q (auto, apify, session)", flagBackend)
	}
	if flagBackend == "session" && platform != "telegram" {
		return nil, errors.New("the session backend only supports telegram")
	}

	auto := flagBackend == "" || flagBackend == "auto"
	useSession := platform == "telegram" &&
		(flagBackend == "session" || (auto && !cfg.HasApify() && cfg.HasTelegramSession()))

	if useSession {
		if !cfg.HasTelegramSession() {
			return nil, errors.New("telegram session backend needs TELEGRAM_API_ID and TELEGRAM_API_HASH")
		}
		return fetcher.NewTelegramBackend(
			cfg.Telegram.AppID, cfg.Telegram.AppHash,
			cfg.Telegram.SessionFile, cfg.Telegram.Phone,
			logger,
		), nil
	}

	if !cfg.HasApify() {
		return nil, errors.New("no backend configured: set APIFY_API_TOKEN, or TELEGRAM_API_ID/TELEGRAM_API_HASH for telegram")
	}
	return fetcher.NewApifyBackend(apify.NewClient(cfg.Apify.Token, cfg.Apify.BaseURL), logger), nil
}

func buildOptions(platform string) (fetcher.Options, error) {
	opts := fetcher.Options{
		Platform:     platform,
		Actor:        flagActor,
		Limit:        flagLimit,
		Days:         flagDays,
		Sort:         flagSort,
		Lang:         flagLang,
		MemoryMB:     flagMemoryMB,
		WaitTimeout:  flagWaitTimeout,
		PollInterval: flagPollInterval,
		EnrichViews:  flagEnrichViews,
	}

	if opts.Limit <= 0 {
		return opts, errors.New("--limit must be positive")
	}
	if opts.MemoryMB <= 0 {
		return opts, errors.New("--memory-mb must be positive")
	}
	if opts.WaitTimeout <= 0 || opts.PollInterval <= 0 {
		return opts, errors.New("--wait-timeout and --poll-interval must be positive")
	}

	var err error
	if opts.DateFrom, err = parseDateFlag(flagDateFrom); err != nil {
		return opts, errors.Wrap(err, "--date-from")
	}
	if opts.DateTo, err = parseDateFlag(flagDateTo); err != nil {
		return opts, errors.Wrap(err, "--date-to")
	}
	if !opts.DateFrom.IsZero() && !opts.DateTo.IsZero() && opts.DateTo.Before(opts.DateFrom) {
		return opts, errors.New("--date-to is before --date-from")
	}

	return opts, nil
}

func buildFilter(opts fetcher.Options) record.Filter {
	return record.Filter{
		Keywords: flagKeywords,
		MinViews: flagMinViews,
		DateFrom: opts.DateFrom,
		DateTo:   opts.DateTo,
	}
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// exportRequest resolves output paths. Explicit --out* flags name files
// directly; without them, --formats picks which derived paths under
// outputs/ get written.
func exportRequest(platform string) (exports.Request, error) {
	req := exports.Request{
		CSVPath:  flagOut,
		JSONPath: flagOutJSON,
		XLSXPath: flagOutExcel,
	}
	if req.CSVPath != "" || req.JSONPath != "" || req.XLSXPath != "" {
		return req, nil
	}

	stamp := time.Now().Format("20060102_150405")
	base := filepath.Join("outputs", fmt.Sprintf("postharvest_%s_%s", platform, stamp))

	for _, format := range flagFormats {
		switch format {
		case "csv":
			if req.CSVPath == "" {
				req.CSVPath = base + ".csv"
			}
		case "json":
			if req.JSONPath == "" {
				req.JSONPath = base + ".json"
			}
		case "xlsx", "excel":
			if req.XLSXPath == "" {
				req.XLSXPath = base + ".xlsx"
			}
		default:
			return req, errors.Newf("unknown format %q (csv, json, xlsx)", format)
		}
	}

	if req.CSVPath == "" && req.JSONPath == "" && req.XLSXPath == "" {
		return req, errors.New("no output requested")
	}
	return req, nil
}
