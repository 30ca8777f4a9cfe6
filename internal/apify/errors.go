// SPDX-License-Identifier: AGPL-3.0-only
package apify

import "fmt"

// APIError is a non-2xx response from the Apify API.
type APIError struct {
	StatusCode int
	Operation  string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: apify returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Auth reports whether the error is a credential problem rather than a
// transient or actor-side failure.
func (e *APIError) Auth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
