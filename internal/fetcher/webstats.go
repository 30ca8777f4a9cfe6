// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const webStatsTimeout = 15 * time.Second

// EmbedViews scrapes the view counter from a message's public t.me embed
// page. Telegram renders counts abbreviated ("1.2K", "3M"), so the result is
// approximate above a thousand.
func (c *Client) EmbedViews(channel, messageID string) (int, error) {
	url := fmt.Sprintf("https://t.me/%s/%s?embed=1&mode=tme", channel, messageID)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set(
		"User-Agent",
		"Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
	)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(doc.Find(".tgme_widget_message_views").First().Text())
	if raw == "" {
		return 0, fmt.Errorf("no view counter on embed page")
	}

	return parseAbbrevCount(raw)
}

// parseAbbrevCount reads counts the way t.me renders them: "841", "1,204",
// "1.2K", "3.4M".
func parseAbbrevCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1_000
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "M")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable count %q", s)
	}

	return int(n * mult), nil
}
