// SPDX-License-Identifier: AGPL-3.0-only

// Package updater checks whether a newer release exists. The check is
// one-shot and advisory; nothing is downloaded.
package updater

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

const versionJSONURL = "https://raw.githubusercontent.com/softpaws/postharvest/main/version.json"

type remoteVersion struct {
	Latest string `json:"latest"`
}

// Check returns the latest published version and whether it differs from
// the running one. A "dev" build never reports an update.
func Check(ctx context.Context, currentVersion string) (latest string, available bool, err error) {
	var rv remoteVersion
	resp, err := resty.New().
		SetTimeout(10 * time.Second).
		R().
		SetContext(ctx).
		SetResult(&rv).
		Get(versionJSONURL)
	if err != nil {
		return "", false, errors.Wrap(err, "checking for updates")
	}
	if resp.IsError() {
		return "", false, errors.Newf("checking for updates: status %d", resp.StatusCode())
	}
	if rv.Latest == "" {
		return "", false, errors.New("checking for updates: empty version")
	}

	if currentVersion == "dev" {
		return rv.Latest, false, nil
	}
	return rv.Latest, rv.Latest != currentVersion, nil
}
