// Package httputil provides retry helpers for remote topology and data
// fetches.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// operation marks its failure as transient by wrapping it in a
// [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// [StatusError] classifies HTTP status codes: 5xx and 429 responses are
// retryable, everything else is returned at once.
//
// Default settings ([RetryWithBackoff]) are 3 attempts starting at one
// second and doubling.
package httputil
