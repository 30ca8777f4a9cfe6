// SPDX-License-Identifier: AGPL-3.0-only
package record

import (
	"strings"
	"time"
)

// Filter narrows a collection after normalization. Zero values mean "keep
// everything" for that dimension.
type Filter struct {
	Keywords []string
	MinViews int
	DateFrom time.Time
	DateTo   time.Time
}

func (f Filter) Apply(c Collection) Collection {
	if len(f.Keywords) == 0 && f.MinViews <= 0 && f.DateFrom.IsZero() && f.DateTo.IsZero() {
		return c
	}

	out := make(Collection, 0, len(c))
	for _, r := range c {
		if !f.matches(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (f Filter) matches(r Record) bool {
	if f.MinViews > 0 && r.Views < f.MinViews {
		return false
	}

	if len(f.Keywords) > 0 {
		text := strings.ToLower(r.Text)
		found := false
		for _, kw := range f.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		t, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			// Records with unparseable dates pass date filters; dropping
			// them silently would lose data the user asked for.
			return true
		}
		if !f.DateFrom.IsZero() && t.Before(f.DateFrom) {
			return false
		}
		if !f.DateTo.IsZero() && t.After(f.DateTo) {
			return false
		}
	}

	return true
}
