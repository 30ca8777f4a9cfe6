// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"net/http"
	"time"
)

// Target kinds. One invocation carries targets of a single kind.
const (
	KindChannel = "channel" // telegram channel username
	KindHandle  = "handle"  // x.com handle
	KindProfile = "profile" // linkedin profile username
	KindSearch  = "search"  // x.com search term
)

type Target struct {
	Kind  string
	Value string
}

// Options carries the per-invocation scrape parameters shared by all
// backends.
type Options struct {
	Platform     string // "telegram", "x", "linkedin"
	Actor        string // key into the platform's actor registry
	Limit        int
	Days         int
	Sort         string
	Lang         string
	MemoryMB     int
	WaitTimeout  time.Duration
	PollInterval time.Duration
	DateFrom     time.Time
	DateTo       time.Time
	EnrichViews  bool
}

// JobSpec is one unit of remote work: a batch of targets that share a
// single job lifecycle. Multi-target actors get one spec for the whole
// batch, single-target actors one spec per target.
type JobSpec struct {
	Label   string
	Targets []Target
}

type Client struct {
	httpClient http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: http.Client{
			Timeout: timeout,
		},
	}
}
