// Package api serves extracted matches and articles as JSON over HTTP.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pfrederiksen/filgoal/internal/logger"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// MatchSource fetches the matches of a day.
type MatchSource interface {
	FetchMatches(ctx context.Context, date string) ([]match.Match, error)
}

// ArticleSource fetches articles and the ids of recent ones.
type ArticleSource interface {
	FetchArticle(ctx context.Context, id string) (match.Article, error)
	FetchArticleIDs(ctx context.Context, limit int) ([]string, error)
}

// SnapshotStore reads saved daily snapshots.
type SnapshotStore interface {
	LoadDaily(date string) ([]match.Match, bool, error)
	GetMatchByID(date, id string) (*match.Match, error)
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Options configures the HTTP service. The zero value is usable.
type Options struct {
	// CORSOrigins is a comma separated list of allowed origins, "*" for any.
	CORSOrigins string
	// Snapshots, when set, serves today's matches without fetching.
	Snapshots SnapshotStore
	// ArticleTTL keeps extracted articles in memory; 0 disables the cache.
	ArticleTTL time.Duration
	Now        func() time.Time
}

// Server is the HTTP service over a match source, an article source and
// optional saved snapshots.
type Server struct {
	app       *fiber.App
	matches   MatchSource
	articles  ArticleSource
	snapshots SnapshotStore
	cache     *ArticleCache
	now       func() time.Time
}

// New builds the HTTP service and registers its routes.
func New(matches MatchSource, articles ArticleSource, opts Options) *Server {
	s := &Server{
		matches:   matches,
		articles:  articles,
		snapshots: opts.Snapshots,
		now:       opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.cache = NewArticleCache(opts.ArticleTTL, s.now)

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestID())
	s.app.Use(accessLog())
	s.app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "running"})
	})
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.JSON(logger.MetricsSnapshot())
	})

	s.app.Get("/matches", s.listMatches)
	s.app.Get("/matches/:id", s.getMatch)
	s.app.Get("/article", s.getArticle)
	s.app.Get("/articles", s.listArticles)

	return s
}

// PruneArticles drops expired articles from the cache. It has the shape of a
// scheduler job so serve can run it periodically.
func (s *Server) PruneArticles(context.Context) error {
	if removed := s.cache.CleanExpired(); removed > 0 {
		logger.AddCounter("api.article_cache_evictions", int64(removed))
		logger.Debug("article cache pruned", logger.Fields{"removed": removed, "size": s.cache.Size()})
	}
	return nil
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	logger.Info("http server listening", logger.Fields{"addr": addr})
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
		if code == fiber.StatusNotFound {
			msg = "Not found"
		}
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error("request error", logger.Fields{
			"path":       c.Path(),
			"request_id": requestIDFrom(c),
		}, err)
	}

	return c.Status(code).JSON(ErrorResponse{Error: msg})
}
