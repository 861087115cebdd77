package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/filgoal/internal/extract"
	"github.com/pfrederiksen/filgoal/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetDefault(logger.New(logger.LevelError, io.Discard))
	os.Exit(m.Run())
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../extract/testdata/" + name)
	require.NoError(t, err)
	return data
}

func newTestScraper(srv *httptest.Server, opts ...Option) *Scraper {
	base := []Option{
		WithBaseURL(srv.URL),
		WithRetryInterval(time.Millisecond),
		WithRateLimit(0),
	}
	return New(append(base, opts...)...)
}

func TestFetchMatches(t *testing.T) {
	t.Parallel()

	page := fixture(t, "matches.html")
	var gotDate atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/", r.URL.Path)
		gotDate.Store(r.URL.Query().Get("date"))
		w.Write(page)
	}))
	defer srv.Close()

	matches, err := newTestScraper(srv).FetchMatches(context.Background(), "2026-10-18")
	require.NoError(t, err)

	assert.Equal(t, "2026-10-18", gotDate.Load())
	require.Len(t, matches, 4)
	assert.Equal(t, "512001", matches[0].ID)
	assert.True(t, strings.HasPrefix(matches[0].URL, srv.URL+"/matches/512001"), matches[0].URL)
}

func TestFetchMatches_DefaultsToToday(t *testing.T) {
	t.Parallel()

	var gotDate atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate.Store(r.URL.Query().Get("date"))
		w.Write([]byte(`<html><body><p>لا توجد مباريات</p></body></html>`))
	}))
	defer srv.Close()

	s := newTestScraper(srv)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 21, 0, 0, 0, time.UTC) }

	matches, err := s.FetchMatches(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NotNil(t, matches)
	assert.Equal(t, "2026-10-18", gotDate.Load())
}

func TestFetchMatches_InvalidDate(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := newTestScraper(srv).FetchMatches(context.Background(), "18/10/2026")
	assert.Error(t, err)
	assert.Zero(t, hits.Load(), "no request for an invalid date")
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	page := fixture(t, "matches.html")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(page)
	}))
	defer srv.Close()

	matches, err := newTestScraper(srv, WithMaxRetries(3)).FetchMatches(context.Background(), "2026-10-18")
	require.NoError(t, err)
	assert.Len(t, matches, 4)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestScraper(srv, WithMaxRetries(2)).FetchMatches(context.Background(), "2026-10-18")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, int32(3), hits.Load(), "one attempt plus two retries")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestFetch_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestScraper(srv).FetchMatches(context.Background(), "2026-10-18")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_UnparseableIsNotAFetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := newTestScraper(srv).FetchMatches(context.Background(), "2026-10-18")
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrUnparseable)
	assert.NotErrorIs(t, err, ErrFetch)
}

func TestFetch_UserAgentFromPool(t *testing.T) {
	t.Parallel()

	pool := []string{"agent-one", "agent-two"}
	var mu sync.Mutex
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.UserAgent()] = true
		mu.Unlock()
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	s := newTestScraper(srv, WithUserAgents(pool))
	for range 5 {
		_, err := s.FetchMatches(context.Background(), "2026-10-18")
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, seen)
	for ua := range seen {
		assert.Contains(t, pool, ua)
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScraper(srv).FetchMatches(ctx, "2026-10-18")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))
	defer srv.Close()

	s := newTestScraper(srv, WithRateLimit(20))
	start := time.Now()
	for range 3 {
		_, err := s.FetchMatches(context.Background(), "2026-10-18")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestFetchArticle(t *testing.T) {
	t.Parallel()

	page := fixture(t, "article.html")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/articles/500001", r.URL.Path)
		w.Write(page)
	}))
	defer srv.Close()

	article, err := newTestScraper(srv).FetchArticle(context.Background(), "500001")
	require.NoError(t, err)

	assert.Equal(t, "500001", article.ID)
	assert.Equal(t, srv.URL+"/articles/500001", article.URL)
	require.NotNil(t, article.Title)
	assert.Equal(t, "الأهلي يفوز على الزمالك في القمة", *article.Title)
	assert.NotEmpty(t, article.Blocks)
}

func TestFetchArticle_Failures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	s := newTestScraper(srv)

	t.Run("invalid id", func(t *testing.T) {
		article, err := s.FetchArticle(context.Background(), "abc")
		assert.Error(t, err)
		assert.Equal(t, "abc", article.ID)
	})

	t.Run("missing article keeps identity", func(t *testing.T) {
		article, err := s.FetchArticle(context.Background(), "42")
		assert.ErrorIs(t, err, ErrFetch)
		assert.Equal(t, "42", article.ID)
		assert.Equal(t, srv.URL+"/articles/42", article.URL)
		assert.Nil(t, article.Title)
		assert.Empty(t, article.Blocks)
	})
}

func TestFetchArticleIDs(t *testing.T) {
	t.Parallel()

	page := fixture(t, "articles.html")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/articles", r.URL.Path)
		w.Write(page)
	}))
	defer srv.Close()
	s := newTestScraper(srv)

	ids, err := s.FetchArticleIDs(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"500001", "500002"}, ids)

	ids, err = s.FetchArticleIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, int32(1), hits.Load(), "limit 0 makes no request")
}

func TestFetchArticles(t *testing.T) {
	t.Parallel()

	page := fixture(t, "article.html")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/articles/500002" {
			http.NotFound(w, r)
			return
		}
		w.Write(page)
	}))
	defer srv.Close()

	articles, err := newTestScraper(srv, WithConcurrency(2)).FetchArticles(context.Background(),
		[]string{"500001", "500002", "500003"})
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, "500001", articles[0].ID)
	assert.NotNil(t, articles[0].Title)
	assert.Equal(t, "500002", articles[1].ID)
	assert.Nil(t, articles[1].Title, "failed article keeps only its identity")
	assert.Equal(t, "500003", articles[2].ID)
	assert.NotNil(t, articles[2].Title)
}

func TestStatusError(t *testing.T) {
	err := error(&StatusError{URL: "https://www.filgoal.com/x", Code: 500})
	assert.Equal(t, "unexpected status code 500 for https://www.filgoal.com/x", err.Error())
	assert.False(t, errors.Is(err, ErrFetch))
}
