// SPDX-License-Identifier: AGPL-3.0-only
package record

// Record is the canonical, platform-agnostic shape of one scraped post or
// message. All backends and actors normalize into this before export.
type Record struct {
	ID        string   `json:"id"`
	Source    string   `json:"source"`
	Network   string   `json:"network"`
	Date      string   `json:"date"`
	Text      string   `json:"text"`
	Views     int      `json:"views"`
	Forwards  int      `json:"forwards"`
	Replies   int      `json:"replies"`
	URL       string   `json:"url"`
	HasMedia  bool     `json:"has_media"`
	MediaURLs []string `json:"media_urls"`
}

type Collection []Record

// Columns is the fixed export column set, shared by CSV and XLSX output.
var Columns = []string{
	"id", "source", "network", "date", "text",
	"views", "forwards", "replies", "url", "has_media", "media_urls",
}

// Deduplicate drops later records that repeat an earlier id+source pair.
// Records without an id are kept as-is; overlapping date windows can only
// produce duplicates for identified posts.
func (c Collection) Deduplicate() Collection {
	seen := make(map[string]struct{}, len(c))
	out := make(Collection, 0, len(c))

	for _, r := range c {
		if r.ID == "" {
			out = append(out, r)
			continue
		}
		key := r.ID + "\x00" + r.Source
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	return out
}
