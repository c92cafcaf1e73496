package faur

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/th3gh0s8/aura/pkg/cache"
	"github.com/th3gh0s8/aura/pkg/integrations"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = srv.URL
	return c
}

func TestInfo(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]Package{
			{Name: "spotify", PackageBase: "spotify", Version: "1.2.26", Depends: []string{"alsa-lib"}},
		})
	})

	pkgs, err := c.Info(context.Background(), []string{"spotify"}, false)
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("len(pkgs) = %d, want 1", len(pkgs))
	}
	if pkgs[0].Name != "spotify" {
		t.Errorf("Name = %q, want %q", pkgs[0].Name, "spotify")
	}
	if gotQuery != "names=spotify" {
		t.Errorf("query = %q, want %q", gotQuery, "names=spotify")
	}
}

func TestInfoEmptyNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for empty input")
	})

	pkgs, err := c.Info(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if pkgs != nil {
		t.Errorf("pkgs = %v, want nil", pkgs)
	}
}

func TestInfoUnknownPackageYieldsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	pkgs, err := c.Info(context.Background(), []string{"definitely-not-real"}, false)
	if err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("len(pkgs) = %d, want 0", len(pkgs))
	}
}

func TestSearchByProvides(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("words") == "" {
			t.Errorf("expected words query, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]Package{
			{Name: "openssh-git", PackageBase: "openssh-git", Provides: []string{"openssh"}},
		})
	})

	pkgs, err := c.Search(context.Background(), []string{"openssh"}, false)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Provides[0] != "openssh" {
		t.Errorf("unexpected results: %+v", pkgs)
	}
}

func TestInfoServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Info(context.Background(), []string{"spotify"}, false)
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestInfoUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode([]Package{{Name: "spotify", PackageBase: "spotify"}})
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	c := NewClient(backend, time.Hour)
	c.baseURL = srv.URL

	ctx := context.Background()
	for range 2 {
		if _, err := c.Info(ctx, []string{"spotify"}, false); err != nil {
			t.Fatalf("Info error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (second lookup should hit cache)", calls)
	}

	// refresh=true bypasses the cache.
	if _, err := c.Info(ctx, []string{"spotify"}, true); err != nil {
		t.Fatalf("Info error: %v", err)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2 after refresh", calls)
	}
}
