package api

import (
	"sync"
	"time"

	"github.com/pfrederiksen/filgoal/internal/match"
)

// DefaultArticleTTL is how long an extracted article is served from memory.
const DefaultArticleTTL = 10 * time.Minute

// ArticleCache holds successfully extracted articles with a TTL
type ArticleCache struct {
	mu       sync.Mutex
	articles map[string]match.Article // article id → article
	cachedAt map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewArticleCache creates an article cache. A ttl <= 0 disables caching.
func NewArticleCache(ttl time.Duration, now func() time.Time) *ArticleCache {
	if now == nil {
		now = time.Now
	}
	return &ArticleCache{
		articles: make(map[string]match.Article),
		cachedAt: make(map[string]time.Time),
		ttl:      ttl,
		now:      now,
	}
}

// Get retrieves an article if present and not expired
func (c *ArticleCache) Get(id string) (match.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	article, exists := c.articles[id]
	if !exists {
		return match.Article{}, false
	}

	if c.now().Sub(c.cachedAt[id]) > c.ttl {
		delete(c.articles, id)
		delete(c.cachedAt, id)
		return match.Article{}, false
	}

	return article, true
}

// Set stores an article
func (c *ArticleCache) Set(article match.Article) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles[article.ID] = article
	c.cachedAt[article.ID] = c.now()
}

// CleanExpired removes expired entries and returns how many were dropped.
func (c *ArticleCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for id, cachedTime := range c.cachedAt {
		if now.Sub(cachedTime) > c.ttl {
			delete(c.articles, id)
			delete(c.cachedAt, id)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached articles, expired ones included.
func (c *ArticleCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.articles)
}
