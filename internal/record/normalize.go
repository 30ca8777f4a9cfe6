// SPDX-License-Identifier: AGPL-3.0-only
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cockroachdb/errors"

	"github.com/softpaws/postharvest/internal/helpers"
)

// Variant identifies the source schema of a raw result set. Every actor
// family emits its own field names for the same attributes, so each variant
// gets its own mapping function instead of one deeply branched normalizer.
type Variant string

const (
	TelegramActor Variant = "telegram-actor"
	XActor        Variant = "x-actor"
	LinkedInActor Variant = "linkedin-actor"
)

type mapFunc func(item map[string]any, source string) (Record, bool)

var variants = map[Variant]mapFunc{
	TelegramActor: mapTelegramItem,
	XActor:        mapXItem,
	LinkedInActor: mapLinkedInItem,
}

// Normalize maps raw actor output into canonical records. Missing optional
// fields never fail a record; items the mapper rejects (demo rows, empty
// placeholders) are skipped.
func Normalize(variant Variant, items []map[string]any, source string) (Collection, error) {
	mapper, ok := variants[variant]
	if !ok {
		return nil, errors.Newf("unknown schema variant %q", variant)
	}

	out := make(Collection, 0, len(items))
	for _, item := range items {
		r, ok := mapper(item, source)
		if !ok {
			continue
		}
		if r.MediaURLs == nil {
			r.MediaURLs = []string{}
		}
		r.HasMedia = len(r.MediaURLs) > 0 || r.HasMedia
		out = append(out, r)
	}

	return out, nil
}

func mapTelegramItem(item map[string]any, source string) (Record, bool) {
	r := Record{
		Network:  "Telegram",
		ID:       firstString(item, "id", "messageId", "postId", "post_id"),
		Source:   firstString(item, "channel", "channelUsername", "channelName", "profileName"),
		Date:     parseDate(firstValue(item, "date", "timestamp", "datetime", "postDate", "created_at")),
		Text:     firstString(item, "text", "message", "content", "postText"),
		Views:    firstInt(item, "views", "viewCount", "view_count"),
		Forwards: firstInt(item, "forwards", "forwardCount", "share_count"),
		Replies:  firstInt(item, "replies", "replyCount", "comment_count"),
		URL:      firstString(item, "url", "postUrl", "link", "post_url"),
	}
	if r.Source == "" {
		r.Source = source
	}
	if strings.Contains(r.Text, "<") {
		r.Text = helpers.StripHTMLToText(r.Text)
	}

	for _, key := range []string{"mediaUrl", "imageUrl", "media_urls", "photo", "images"} {
		r.MediaURLs = append(r.MediaURLs, stringList(item[key])...)
	}
	if len(r.MediaURLs) == 0 && item["media"] != nil {
		r.HasMedia = true
	}

	if r.URL == "" && r.ID != "" && r.Source != "" {
		r.URL, _ = helpers.ConvPostToURL("Telegram", r.Source, r.ID)
	}

	return r, r.ID != "" || r.Text != ""
}

func mapXItem(item map[string]any, source string) (Record, bool) {
	// PPR-style actors mark placeholder rows instead of omitting them.
	if truthy(item["noResults"]) || truthy(item["demo"]) {
		return Record{}, false
	}

	author, _ := item["author"].(map[string]any)

	r := Record{
		Network:  "X",
		ID:       firstString(item, "tweet_id", "id", "id_str"),
		Source:   firstString(author, "screen_name", "userName", "username"),
		Date:     parseDate(firstValue(item, "created_at", "createdAt", "date", "timestamp")),
		Text:     firstString(item, "text", "full_text", "tweetText", "content"),
		Views:    firstInt(item, "views", "viewCount", "view_count"),
		Forwards: firstInt(item, "retweets", "retweetCount", "retweet_count"),
		Replies:  firstInt(item, "replies", "replyCount", "reply_count"),
		URL:      firstString(item, "url", "twitterUrl", "tweetUrl"),
	}
	if r.Source == "" {
		r.Source = firstString(item, "twitterHandle", "handle")
	}
	if r.Source == "" {
		r.Source = source
	}

	r.MediaURLs = xMediaURLs(item["media"])

	if r.URL == "" && r.ID != "" && r.Source != "" {
		r.URL, _ = helpers.ConvPostToURL("X", r.Source, r.ID)
	}

	return r, r.ID != "" || r.Text != ""
}

// xMediaURLs flattens the two shapes the X actors use: a map of typed entry
// lists ({"photo": [...], "video": [...]}) or one flat entry list.
func xMediaURLs(media any) []string {
	var urls []string

	entry := func(v any) {
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		if u := firstString(m, "media_url_https", "url"); u != "" {
			urls = append(urls, u)
		}
	}

	switch m := media.(type) {
	case map[string]any:
		for _, kind := range []string{"photo", "video", "animated_gif"} {
			entries, _ := m[kind].([]any)
			for _, e := range entries {
				entry(e)
			}
		}
	case []any:
		for _, e := range m {
			entry(e)
		}
	}

	return urls
}

func mapLinkedInItem(item map[string]any, source string) (Record, bool) {
	author, _ := item["author"].(map[string]any)
	stats, _ := item["stats"].(map[string]any)
	postedAt, _ := item["posted_at"].(map[string]any)
	urn, _ := item["urn"].(map[string]any)

	r := Record{
		Network:  "LinkedIn",
		ID:       firstString(urn, "activity_urn"),
		Source:   firstString(author, "username"),
		Date:     parseDate(firstValue(postedAt, "date", "timestamp")),
		Text:     firstString(item, "text", "commentary"),
		Views:    firstInt(stats, "views", "impressions"),
		Forwards: firstInt(stats, "reposts"),
		Replies:  firstInt(stats, "comments"),
		URL:      firstString(item, "url", "post_url"),
	}
	if r.ID == "" {
		r.ID = firstString(item, "activity_id", "id")
	}
	if r.Source == "" {
		r.Source = source
	}

	if media, ok := item["media"].(map[string]any); ok {
		if u := firstString(media, "url"); u != "" {
			r.MediaURLs = append(r.MediaURLs, u)
		}
		images, _ := media["images"].([]any)
		for _, img := range images {
			if m, ok := img.(map[string]any); ok {
				if u := firstString(m, "url"); u != "" {
					r.MediaURLs = append(r.MediaURLs, u)
				}
			}
		}
	}

	if r.URL == "" && r.ID != "" {
		r.URL, _ = helpers.ConvPostToURL("LinkedIn", r.Source, r.ID)
	}

	return r, r.ID != "" || r.Text != ""
}

// parseDate accepts the timestamp shapes seen across actors (RFC 3339,
// "Mon Jan 02 15:04:05 -0700 2006", date-only strings, unix seconds or
// millis) and renders them all as UTC RFC 3339. Unparseable input is kept
// verbatim rather than dropped.
func parseDate(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case float64:
		return unixToRFC3339(int64(v))
	case int64:
		return unixToRFC3339(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ""
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return unixToRFC3339(n)
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return s
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func unixToRFC3339(n int64) string {
	if n > 1e12 { // millis
		n /= 1000
	}
	return time.Unix(n, 0).UTC().Format(time.RFC3339)
}

func firstValue(item map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := item[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}

func firstInt(item map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := item[k].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func stringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, e := range val {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
