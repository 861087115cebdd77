package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/filgoal/internal/match"
)

func TestArticleCache(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := NewArticleCache(time.Minute, func() time.Time { return now })

	if _, ok := c.Get("1"); ok {
		t.Fatal("empty cache returned an article")
	}

	c.Set(match.NewArticle(match.BaseURL, "1"))
	got, ok := c.Get("1")
	if !ok || got.ID != "1" {
		t.Fatalf("Get() = %v, %v; want cached article", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("1"); ok {
		t.Error("expired article was returned")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expiry, want 0", c.Size())
	}
}

func TestArticleCache_CleanExpired(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := NewArticleCache(time.Minute, func() time.Time { return now })

	c.Set(match.NewArticle(match.BaseURL, "1"))
	now = now.Add(45 * time.Second)
	c.Set(match.NewArticle(match.BaseURL, "2"))
	now = now.Add(30 * time.Second)

	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestArticleCache_Disabled(t *testing.T) {
	c := NewArticleCache(0, nil)
	c.Set(match.NewArticle(match.BaseURL, "1"))
	if c.Size() != 0 {
		t.Error("disabled cache stored an article")
	}
}

type stubArticles struct{}

func (stubArticles) FetchMatches(context.Context, string) ([]match.Match, error) {
	return []match.Match{}, nil
}

func (stubArticles) FetchArticle(_ context.Context, id string) (match.Article, error) {
	return match.NewArticle(match.BaseURL, id), nil
}

func (stubArticles) FetchArticleIDs(context.Context, int) ([]string, error) {
	return []string{}, nil
}

func TestServer_PruneArticles(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	s := New(stubArticles{}, stubArticles{}, Options{Now: clock, ArticleTTL: time.Minute})
	for _, id := range []string{"500001", "500002", "500003"} {
		resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/article?id="+id, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", id, err)
		}
		resp.Body.Close()
	}
	if s.cache.Size() != 3 {
		t.Fatalf("cache size = %d, want 3", s.cache.Size())
	}

	if err := s.PruneArticles(context.Background()); err != nil {
		t.Fatalf("PruneArticles: %v", err)
	}
	if s.cache.Size() != 3 {
		t.Errorf("fresh entries pruned: size = %d", s.cache.Size())
	}

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	if err := s.PruneArticles(context.Background()); err != nil {
		t.Fatalf("PruneArticles: %v", err)
	}
	if s.cache.Size() != 0 {
		t.Errorf("expired entries kept without a lookup: size = %d", s.cache.Size())
	}
}
