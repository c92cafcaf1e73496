// Package faur provides a client for the Faur AUR metadata API.
//
// Faur (https://faur.fosskers.ca) is a read-only mirror of AUR package
// metadata with the same record shape as the AUR RPC interface. It supports
// lookup by exact name, by provided name, and full-text search.
package faur

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/th3gh0s8/aura/pkg/cache"
	"github.com/th3gh0s8/aura/pkg/integrations"
)

const defaultBaseURL = "https://faur.fosskers.ca"

// Package holds metadata for one AUR package as returned by Faur.
//
// A nil slice field is valid and means the package declares nothing for
// that field. The struct is safe for concurrent reads after construction.
type Package struct {
	Name        string   `json:"Name"`        // Package name (e.g. "spotify")
	PackageBase string   `json:"PackageBase"` // Base name owning the source tree
	Version     string   `json:"Version"`     // Current version string
	Description string   `json:"Description"` // Short description (may be empty)
	URL         string   `json:"URL"`         // Upstream homepage (may be empty)
	Provides    []string `json:"Provides"`    // Names this package satisfies
	Depends     []string `json:"Depends"`     // Runtime dependencies
	MakeDepends []string `json:"MakeDepends"` // Build-time dependencies
	Votes       int      `json:"NumVotes"`    // AUR vote count
	Popularity  float64  `json:"Popularity"`  // AUR popularity score
}

// Client provides access to the Faur metadata API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Faur client with the given cache backend.
// Use cache.NewNullCache() to disable caching. The returned Client is safe
// for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "faur:", cacheTTL, nil),
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL overrides the metadata server, for self-hosted mirrors.
// It returns the client for chaining.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// Info retrieves metadata for the exactly-named packages. Unknown names are
// simply absent from the result; looking up only unknown names yields an
// empty slice, not an error.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) Info(ctx context.Context, names []string, refresh bool) ([]Package, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return c.query(ctx, "names", names, refresh)
}

// Search performs a full-text search. The terms are matched against package
// names and descriptions; results are the union across terms.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) Search(ctx context.Context, terms []string, refresh bool) ([]Package, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	return c.query(ctx, "words", terms, refresh)
}

func (c *Client) query(ctx context.Context, param string, values []string, refresh bool) ([]Package, error) {
	// Sorted copy so that equivalent queries share a cache entry.
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	joined := strings.Join(sorted, ",")

	var pkgs []Package
	err := c.Cached(ctx, param+":"+joined, refresh, &pkgs, func() error {
		u := fmt.Sprintf("%s/packages?%s=%s", c.baseURL, param, url.QueryEscape(joined))
		return c.Get(ctx, u, &pkgs)
	})
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}
