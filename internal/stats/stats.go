// SPDX-License-Identifier: AGPL-3.0-only
package stats

import (
	"sort"

	"github.com/softpaws/postharvest/internal/record"
)

// SourceStats aggregates one source's records.
type SourceStats struct {
	Network  string `json:"network"`
	Source   string `json:"source"`
	Posts    int    `json:"posts"`
	Views    int    `json:"views"`
	Forwards int    `json:"forwards"`
	Replies  int    `json:"replies"`
	Media    int    `json:"media"`
}

// Aggregate rolls a collection up per source, sorted by post count
// descending.
func Aggregate(recs record.Collection) []SourceStats {
	statsMap := make(map[string]*SourceStats)

	for _, r := range recs {
		key := r.Network + "/" + r.Source
		s, ok := statsMap[key]
		if !ok {
			s = &SourceStats{Network: r.Network, Source: r.Source}
			statsMap[key] = s
		}

		s.Posts++
		s.Views += r.Views
		s.Forwards += r.Forwards
		s.Replies += r.Replies
		if r.HasMedia {
			s.Media++
		}
	}

	result := make([]SourceStats, 0, len(statsMap))
	for _, s := range statsMap {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Posts != result[j].Posts {
			return result[i].Posts > result[j].Posts
		}
		return result[i].Source < result[j].Source
	})

	return result
}
