// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/softpaws/postharvest/internal/record"
)

// actorDef describes one cloud actor: its platform id, whether a single run
// can cover a whole target batch, the schema variant of its output, and how
// to build its input document.
type actorDef struct {
	ID      string
	Batch   bool
	Variant record.Variant
	Input   func(targets []Target, opts Options) map[string]any
}

// actorRegistry maps platform → actor key → definition. Actor keys are what
// the --actor flag selects; the first key listed in defaultActor is used when
// the flag is absent.
var actorRegistry = map[string]map[string]actorDef{
	"telegram": {
		"media": {
			ID:      "f9ah2tzQwzhF8OyfK",
			Batch:   true,
			Variant: record.TelegramActor,
			Input: func(targets []Target, opts Options) map[string]any {
				return map[string]any{
					"channels":      targetValues(targets),
					"postsPerPage":  opts.Limit,
					"includeMedia":  true,
					"proxyRotation": "RECOMMENDED",
				}
			},
		},
		"posts": {
			ID:      "73JZk4CeKcDsWoJQu",
			Batch:   true,
			Variant: record.TelegramActor,
			Input: func(targets []Target, opts Options) map[string]any {
				in := map[string]any{
					"channels": targetValues(targets),
					"maxPosts": opts.Limit,
				}
				if opts.Days > 0 {
					in["postsFromDate"] = daysAgo(opts.Days)
				}
				return in
			},
		},
		"messages": {
			ID:      "TpLqaxMYSJzwVnXoj",
			Batch:   false,
			Variant: record.TelegramActor,
			Input: func(targets []Target, opts Options) map[string]any {
				return map[string]any{
					"channelName": targets[0].Value,
					"limit":       opts.Limit,
				}
			},
		},
	},
	"x": {
		"ppr": {
			ID:      "ghSpYIW3L1RvT57NT",
			Batch:   false,
			Variant: record.XActor,
			Input: func(targets []Target, opts Options) map[string]any {
				return map[string]any{
					"twitterHandle": targets[0].Value,
					"maxTweets":     opts.Limit,
					"sort":          opts.Sort,
				}
			},
		},
		"search": {
			ID:      "CJdippxWmn9uRfooo",
			Batch:   true,
			Variant: record.XActor,
			Input: func(targets []Target, opts Options) map[string]any {
				in := map[string]any{
					"searchTerms": targetValues(targets),
					"maxItems":    opts.Limit,
					"sort":        opts.Sort,
				}
				if opts.Lang != "" {
					in["tweetLanguage"] = opts.Lang
				}
				if !opts.DateFrom.IsZero() {
					in["start"] = opts.DateFrom.Format("2006-01-02")
				}
				if !opts.DateTo.IsZero() {
					in["end"] = opts.DateTo.Format("2006-01-02")
				}
				return in
			},
		},
		"full": {
			ID:      "61RPP7dywgiy0JPD0",
			Batch:   true,
			Variant: record.XActor,
			Input: func(targets []Target, opts Options) map[string]any {
				in := map[string]any{
					"twitterHandles": targetValues(targets),
					"maxItems":       opts.Limit,
					"sort":           opts.Sort,
				}
				if opts.Lang != "" {
					in["tweetLanguage"] = opts.Lang
				}
				if !opts.DateFrom.IsZero() {
					in["start"] = opts.DateFrom.Format("2006-01-02")
				}
				return in
			},
		},
	},
	"linkedin": {
		"profile-posts": {
			ID:      "LQQIXN9Othf8f7R5n",
			Batch:   false,
			Variant: record.LinkedInActor,
			Input: func(targets []Target, opts Options) map[string]any {
				return map[string]any{
					"username":    targets[0].Value,
					"page_number": 1,
					"limit":       opts.Limit,
				}
			},
		},
	},
}

var defaultActor = map[string]string{
	"telegram": "posts",
	"x":        "search",
	"linkedin": "profile-posts",
}

func lookupActor(platform, name string) (actorDef, error) {
	platformActors, ok := actorRegistry[platform]
	if !ok {
		return actorDef{}, errors.Newf("no actors registered for platform %q", platform)
	}
	if name == "" {
		name = defaultActor[platform]
	}
	def, ok := platformActors[name]
	if !ok {
		return actorDef{}, errors.Newf("unknown actor %q for platform %q", name, platform)
	}
	return def, nil
}

func targetValues(targets []Target) []string {
	vals := make([]string, 0, len(targets))
	for _, t := range targets {
		vals = append(vals, t.Value)
	}
	return vals
}

func daysAgo(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
}
