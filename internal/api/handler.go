package api

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/pfrederiksen/filgoal/internal/filter"
	"github.com/pfrederiksen/filgoal/internal/logger"
	"github.com/pfrederiksen/filgoal/internal/match"
	"github.com/pfrederiksen/filgoal/internal/scraper"
	"github.com/pfrederiksen/filgoal/internal/storage"
)

const (
	defaultArticleLimit = 10
	maxArticleLimit     = 50
)

var digitsPattern = regexp.MustCompile(`^\d+$`)

// listMatches returns the matches of ?date=YYYY-MM-DD, today when omitted.
// Optional ?league= and ?team= take comma-separated values.
func (s *Server) listMatches(c *fiber.Ctx) error {
	date, err := s.queryDate(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD."})
	}

	matches, err := s.matchesFor(c, date)
	if err != nil {
		return fetchError(c, err)
	}

	f := filter.NewFilter()
	f.Leagues = queryList(c, "league")
	f.Teams = queryList(c, "team")
	return c.JSON(f.Apply(matches))
}

// getMatch returns one match of ?date= by its id.
func (s *Server) getMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	if !digitsPattern.MatchString(id) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid match id"})
	}

	date, err := s.queryDate(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD."})
	}

	if s.snapshots != nil && date == match.Today(s.now()) {
		m, err := s.snapshots.GetMatchByID(date, id)
		switch {
		case err == nil:
			return c.JSON(m)
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Match not found"})
		case !errors.Is(err, storage.ErrNoSnapshot):
			logger.Warn("snapshot unreadable, fetching instead", logger.Fields{"date": date, "error": err.Error()})
		}
	}

	matches, err := s.matches.FetchMatches(c.UserContext(), date)
	if err != nil {
		return fetchError(c, err)
	}
	for _, m := range matches {
		if m.ID == id {
			return c.JSON(m)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Match not found"})
}

func (s *Server) getArticle(c *fiber.Ctx) error {
	// copied: the id outlives the request as an ArticleCache key
	id := utils.CopyString(c.Query("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Missing article id"})
	}
	if !digitsPattern.MatchString(id) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid article id"})
	}

	if article, ok := s.cache.Get(id); ok {
		logger.IncrCounter("api.article_cache_hits")
		return c.JSON(article)
	}

	article, err := s.articles.FetchArticle(c.UserContext(), id)
	if err != nil {
		return fetchError(c, err)
	}
	s.cache.Set(article)
	return c.JSON(article)
}

func (s *Server) listArticles(c *fiber.Ctx) error {
	limit := defaultArticleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid limit"})
		}
		limit = min(n, maxArticleLimit)
	}

	ids, err := s.articles.FetchArticleIDs(c.UserContext(), limit)
	if err != nil {
		return fetchError(c, err)
	}
	return c.JSON(ids)
}

func (s *Server) queryDate(c *fiber.Ctx) (string, error) {
	date := c.Query("date")
	if date == "" {
		return match.Today(s.now()), nil
	}
	if err := match.ValidateDate(date); err != nil {
		return "", err
	}
	return date, nil
}

func queryList(c *fiber.Ctx, key string) []string {
	var values []string
	for _, v := range strings.Split(c.Query(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// matchesFor serves today from the saved snapshot when there is one and
// fetches every other day.
func (s *Server) matchesFor(c *fiber.Ctx, date string) ([]match.Match, error) {
	if s.snapshots != nil && date == match.Today(s.now()) {
		matches, found, err := s.snapshots.LoadDaily(date)
		switch {
		case err != nil:
			logger.Warn("snapshot unreadable, fetching instead", logger.Fields{"date": date, "error": err.Error()})
		case found:
			logger.IncrCounter("api.snapshot_hits")
			return matches, nil
		}
	}
	return s.matches.FetchMatches(c.UserContext(), date)
}

// fetchError maps upstream failures to 502 and extraction failures to 500.
func fetchError(c *fiber.Ctx, err error) error {
	logger.Error("upstream request failed", logger.Fields{
		"path":       c.Path(),
		"request_id": requestIDFrom(c),
	}, err)

	if errors.Is(err, scraper.ErrFetch) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "Failed to fetch data from FilGoal"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to extract data"})
}
