// SPDX-License-Identifier: AGPL-3.0-only
package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChannel(t *testing.T) {
	cases := map[string]string{
		"somechannel":                    "somechannel",
		"@somechannel":                   "somechannel",
		"https://t.me/somechannel":       "somechannel",
		"https://t.me/somechannel/42":    "somechannel",
		"t.me/somechannel?before=100":  "somechannel",
		" https://t.me/somechannel ":   "somechannel",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeChannel(in), in)
	}
}

func TestNormalizeHandle(t *testing.T) {
	cases := map[string]string{
		"someone":                         "someone",
		"@someone":                        "someone",
		"https://x.com/someone":           "someone",
		"https://twitter.com/someone":     "someone",
		"x.com/someone/status/1":          "someone",
		"https://X.com/someone?ref=home":  "someone",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHandle(in), in)
	}
}

func TestNormalizeProfile(t *testing.T) {
	cases := map[string]string{
		"jane-doe":                                 "jane-doe",
		"https://www.linkedin.com/in/jane-doe":     "jane-doe",
		"https://www.linkedin.com/in/jane-doe/":    "jane-doe",
		"linkedin.com/in/jane-doe?trk=something":   "jane-doe",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeProfile(in), in)
	}
}

func TestConvPostToURL(t *testing.T) {
	url, err := ConvPostToURL("Telegram", "chan", "42")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/chan/42", url)

	url, err = ConvPostToURL("X", "someone", "99")
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/someone/status/99", url)

	url, err = ConvPostToURL("LinkedIn", "jane", "urn:li:activity:7")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:activity:7", url)

	_, err = ConvPostToURL("Myspace", "a", "1")
	assert.Error(t, err)
}

func TestStripHTMLToText(t *testing.T) {
	assert.Equal(t, "hello world", StripHTMLToText("<p>hello <b>world</b></p>"))
	assert.Equal(t, "a b", StripHTMLToText("a<br>b"))
	assert.Equal(t, "", StripHTMLToText("<div></div>"))
}
