package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/filgoal/internal/extract"
	"github.com/pfrederiksen/filgoal/internal/logger"
	"github.com/pfrederiksen/filgoal/internal/match"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	// DefaultConcurrency bounds parallel article fetches.
	DefaultConcurrency = 4
)

// DefaultUserAgents is the pool rotated across requests.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/123.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
}

// ErrFetch marks failures to retrieve a page, as opposed to failures to read it.
var ErrFetch = errors.New("fetch failed")

var articleIDPattern = regexp.MustCompile(`^\d+$`)

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// Scraper fetches and extracts FilGoal pages
type Scraper struct {
	client        *http.Client
	baseURL       string
	userAgents    []string
	maxRetries    int
	retryInterval time.Duration
	limiter       *rate.Limiter
	concurrency   int
	extractor     *extract.Extractor
	now           func() time.Time
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL sets the site root. Defaults to match.BaseURL.
func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			s.baseURL = u
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.client = c
	}
}

// WithUserAgents replaces the user-agent pool. An empty pool is ignored.
func WithUserAgents(agents []string) Option {
	return func(s *Scraper) {
		if len(agents) > 0 {
			s.userAgents = agents
		}
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(s *Scraper) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryInterval sets the first backoff delay.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Scraper) {
		s.retryInterval = d
	}
}

// WithRateLimit allows rps requests per second with no bursting. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(s *Scraper) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithConcurrency bounds parallel fetches in FetchArticles.
func WithConcurrency(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:        &http.Client{Timeout: DefaultTimeout},
		baseURL:       match.BaseURL,
		userAgents:    DefaultUserAgents,
		maxRetries:    DefaultMaxRetries,
		retryInterval: 500 * time.Millisecond,
		concurrency:   DefaultConcurrency,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = extract.New(extract.WithBaseURL(s.baseURL))
	return s
}

// BaseURL returns the site root requests are made against.
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// FetchMatches fetches the matches page for date (YYYY-MM-DD, empty for
// today) and extracts its matches.
func (s *Scraper) FetchMatches(ctx context.Context, date string) ([]match.Match, error) {
	if date == "" {
		date = match.Today(s.now())
	} else if err := match.ValidateDate(date); err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, "matches", s.baseURL+"/matches/?date="+date)
	if err != nil {
		return nil, err
	}

	matches, err := s.extractor.Matches(doc)
	if err != nil {
		return nil, fmt.Errorf("extracting matches for %s: %w", date, err)
	}

	logger.AddCounter("extract.matches", int64(len(matches)))
	logger.Debug("matches extracted", logger.Fields{"date": date, "count": len(matches)})
	return matches, nil
}

// FetchArticle fetches and extracts one article. On failure the returned
// record still carries the id and canonical URL.
func (s *Scraper) FetchArticle(ctx context.Context, id string) (match.Article, error) {
	article := match.NewArticle(s.baseURL, id)
	if !articleIDPattern.MatchString(id) {
		return article, fmt.Errorf("invalid article id %q", id)
	}

	doc, err := s.fetchDocument(ctx, "article", article.URL)
	if err != nil {
		return article, err
	}

	article, err = s.extractor.Article(doc, id)
	if err != nil {
		return article, fmt.Errorf("extracting article %s: %w", id, err)
	}

	logger.IncrCounter("extract.articles")
	return article, nil
}

// FetchArticleIDs returns up to limit article ids from the news listing.
func (s *Scraper) FetchArticleIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	doc, err := s.fetchDocument(ctx, "articles", s.baseURL+"/articles")
	if err != nil {
		return nil, err
	}

	return s.extractor.ArticleIDs(doc, limit), nil
}

// FetchArticles fetches ids in parallel, preserving their order. A failed
// article keeps its identity-only record and is logged; only cancellation of
// ctx aborts the batch.
func (s *Scraper) FetchArticles(ctx context.Context, ids []string) ([]match.Article, error) {
	articles := make([]match.Article, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			article, err := s.FetchArticle(gctx, id)
			articles[i] = article
			if err == nil {
				return nil
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("article skipped", logger.Fields{"id": id, "error": err.Error()})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, kind, url string) (*goquery.Document, error) {
	body, err := s.fetch(ctx, kind, url)
	if err != nil {
		return nil, err
	}
	return extract.Parse(bytes.NewReader(body))
}

// fetch retrieves url, retrying transient failures.
func (s *Scraper) fetch(ctx context.Context, kind, url string) ([]byte, error) {
	start := time.Now()
	logger.IncrCounter("fetch.requests")

	var (
		body    []byte
		status  int
		attempt int
	)

	op := func() error {
		attempt++
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent())
		req.Header.Set("Accept-Language", "ar,en;q=0.8")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if resp.StatusCode != http.StatusOK {
			err := &StatusError{URL: url, Code: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("fetch.retries")
		logger.Warn("retrying fetch", logger.Fields{
			"url":     url,
			"attempt": attempt + 1,
			"wait_ms": wait.Milliseconds(),
			"error":   err.Error(),
		})
	}

	err := backoff.RetryNotify(op, s.backoff(ctx), notify)
	elapsed := time.Since(start)
	logger.RecordTiming("fetch."+kind, elapsed)

	if err != nil {
		logger.IncrCounter("fetch.errors")
		logger.Error("fetch failed", logger.Fields{
			"url":      url,
			"status":   status,
			"attempts": attempt,
		}, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}

	logger.Info("page fetched", logger.Fields{
		"url":         url,
		"status":      status,
		"bytes":       len(body),
		"duration_ms": elapsed.Milliseconds(),
	})
	return body, nil
}

func (s *Scraper) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxRetries)), ctx)
}

func (s *Scraper) userAgent() string {
	return s.userAgents[rand.IntN(len(s.userAgents))]
}
