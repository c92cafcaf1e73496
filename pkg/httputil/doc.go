// Package httputil provides HTTP utilities for the AUR metadata client.
//
// # Retry
//
// [Retry] wraps network calls with automatic retry for transient failures:
//
//   - Network errors (timeouts, connection resets)
//   - 5xx server errors
//
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned immediately. Retries use exponential backoff:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.fetch(ctx, url, &out)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling per attempt
package httputil
