// Package integrations provides shared HTTP client functionality for
// remote package-metadata APIs.
//
// The [Client] type handles response caching, retry with backoff, and
// common request headers. Concrete API clients (currently [faur]) embed it
// and add endpoint-specific methods.
//
// # Error Handling
//
// All clients use consistent error values:
//   - [ErrNotFound]: package or resource does not exist (HTTP 404)
//   - [ErrNetwork]: HTTP failure (timeout, connection error, 5xx)
//
// 5xx responses and transport errors are retried automatically; 404s are
// returned immediately.
package integrations
