// SPDX-License-Identifier: AGPL-3.0-only
package helpers

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// NormalizeChannel turns t.me links and @names into a plain channel username.
func NormalizeChannel(channel string) string {
	channel = strings.TrimSpace(channel)
	if idx := strings.Index(channel, "t.me/"); idx != -1 {
		channel = channel[idx+len("t.me/"):]
		channel = strings.SplitN(channel, "/", 2)[0]
		channel = strings.SplitN(channel, "?", 2)[0]
	}
	return strings.TrimPrefix(channel, "@")
}

// NormalizeHandle turns x.com/twitter.com links and @names into a plain handle.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	for _, prefix := range []string{
		"https://x.com/", "https://twitter.com/",
		"http://x.com/", "http://twitter.com/",
		"x.com/", "twitter.com/",
	} {
		if strings.HasPrefix(strings.ToLower(handle), prefix) {
			handle = handle[len(prefix):]
			handle = strings.SplitN(handle, "/", 2)[0]
			handle = strings.SplitN(handle, "?", 2)[0]
			break
		}
	}
	return strings.TrimPrefix(handle, "@")
}

// NormalizeProfile extracts a LinkedIn username from a profile URL or handle.
func NormalizeProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	profile = strings.TrimSuffix(profile, "/")
	for _, prefix := range []string{
		"https://www.linkedin.com/in/", "https://linkedin.com/in/",
		"http://www.linkedin.com/in/", "http://linkedin.com/in/",
		"www.linkedin.com/in/", "linkedin.com/in/",
	} {
		if strings.HasPrefix(strings.ToLower(profile), prefix) {
			profile = profile[len(prefix):]
			profile = strings.SplitN(profile, "/", 2)[0]
			profile = strings.SplitN(profile, "?", 2)[0]
			break
		}
	}
	return profile
}

func ConvPostToURL(network, author, networkId string) (string, error) {
	switch network {
	case "Telegram":
		return "https://t.me/" + author + "/" + networkId, nil
	case "X":
		return "https://x.com/" + author + "/status/" + networkId, nil
	case "LinkedIn":
		return "https://www.linkedin.com/feed/update/" + networkId, nil
	default:
		return "", fmt.Errorf("network %v not recognized", network)
	}
}

func StripHTMLToText(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return ""
	}

	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}
