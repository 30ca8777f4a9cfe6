// SPDX-License-Identifier: AGPL-3.0-only

// Package apify is a minimal client for the Apify v2 REST API: start an
// actor run, watch its status, drain its default dataset. Authentication,
// proxies, retries against the scraped platforms are all the actor's
// problem, not ours.
package apify

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.apify.com/v2"

// datasetPageSize matches the maximum page the items endpoint serves.
const datasetPageSize = 1000

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient builds a client with the given API token. The token comes from
// configuration (APIFY_API_TOKEN); it is never embedded in source.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetQueryParam("token", token).
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second)

	return &Client{
		http: http,
		// The platform allows far more, this just keeps a misconfigured
		// poll interval from hammering the API.
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// Run is the subset of the actor-run object this tool reads.
type Run struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	StatusMessage    string `json:"statusMessage"`
	DefaultDatasetID string `json:"defaultDatasetId"`
	Stats            struct {
		DurationMillis int64 `json:"durationMillis"`
	} `json:"stats"`
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// StartRun submits an actor run and returns it in its initial remote state.
func (c *Client) StartRun(ctx context.Context, actorID string, input any, memoryMB int) (*Run, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out runEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("memory", fmt.Sprintf("%d", memoryMB)).
		SetBody(input).
		SetResult(&out).
		Post("/acts/" + actorID + "/runs")
	if err != nil {
		return nil, errors.Wrap(err, "starting actor run")
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Operation: "start run", Body: truncate(resp.String(), 500)}
	}
	if out.Data.ID == "" {
		return nil, errors.New("starting actor run: response carried no run id")
	}

	return &out.Data, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out runEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/actor-runs/" + runID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching run status")
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Operation: "get run", Body: truncate(resp.String(), 500)}
	}

	return &out.Data, nil
}

// DatasetItems drains every page of a dataset into one slice.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	var items []map[string]any
	offset := 0

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var page []map[string]any
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("offset", fmt.Sprintf("%d", offset)).
			SetQueryParam("limit", fmt.Sprintf("%d", datasetPageSize)).
			SetQueryParam("format", "json").
			SetResult(&page).
			Get("/datasets/" + datasetID + "/items")
		if err != nil {
			return nil, errors.Wrap(err, "fetching dataset items")
		}
		if resp.IsError() {
			return nil, &APIError{StatusCode: resp.StatusCode(), Operation: "dataset items", Body: truncate(resp.String(), 500)}
		}

		items = append(items, page...)
		if len(page) < datasetPageSize {
			return items, nil
		}
		offset += datasetPageSize
	}
}

// RunLog fetches the tail of a run's log, used to enrich failure reports.
func (c *Client) RunLog(ctx context.Context, runID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/actor-runs/" + runID + "/log")
	if err != nil {
		return "", errors.Wrap(err, "fetching run log")
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Operation: "run log", Body: ""}
	}

	log := resp.String()
	if len(log) > 500 {
		log = "…" + log[len(log)-500:]
	}
	return log, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
