package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/filgoal/internal/api"
	"github.com/pfrederiksen/filgoal/internal/config"
	"github.com/pfrederiksen/filgoal/internal/extract"
	"github.com/pfrederiksen/filgoal/internal/filter"
	"github.com/pfrederiksen/filgoal/internal/logger"
	"github.com/pfrederiksen/filgoal/internal/match"
	"github.com/pfrederiksen/filgoal/internal/scheduler"
	"github.com/pfrederiksen/filgoal/internal/scraper"
	"github.com/pfrederiksen/filgoal/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const shutdownTimeout = 5 * time.Second

var (
	flagConfig   string
	flagDataDir  string
	flagVerbose  bool
	flagDate     string
	flagFormat   string
	flagSort     string
	flagFromFile string
	flagLimit    int
	flagFetch    bool

	flagLeagues  []string
	flagTeams    []string
	flagChannels []string
	flagBetween  string
	flagScored   bool

	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filgoal",
		Short: "Extract matches and articles from FilGoal",
		Long: `A CLI tool that reads FilGoal match listings and news articles
into structured records, saves a daily match snapshot and serves both as JSON.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $XDG_CONFIG_HOME/filgoal/config.yaml)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for daily snapshots")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newMatchesCmd(), newArticleCmd(), newArticlesCmd(), newSnapshotCmd(), newServeCmd())

	return cmd
}

func newMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List the matches of a day",
		Args:  cobra.NoArgs,
		RunE:  runMatches,
	}
	cmd.Flags().StringVar(&flagDate, "date", "", "Day to list, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&flagSort, "sort", "document", "Sort order: document, league or kickoff")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Read a saved matches page instead of fetching")
	cmd.Flags().StringSliceVar(&flagLeagues, "league", nil, "Only leagues containing this text (repeatable)")
	cmd.Flags().StringSliceVar(&flagTeams, "team", nil, "Only matches of a team containing this text (repeatable)")
	cmd.Flags().StringSliceVar(&flagChannels, "channel", nil, "Only matches on a channel containing this text (repeatable)")
	cmd.Flags().StringVar(&flagBetween, "between", "", "Kickoff window, e.g. '18:00-23:00', '18:00-' or '-16:00'")
	cmd.Flags().BoolVar(&flagScored, "scored", false, "Only matches that have a score")
	return cmd
}

func newArticleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article <id>",
		Short: "Extract one article",
		Args:  cobra.ExactArgs(1),
		RunE:  runArticle,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Read a saved article page instead of fetching")
	return cmd
}

func newArticlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List recent article ids",
		Args:  cobra.NoArgs,
		RunE:  runArticles,
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 10, "Maximum number of articles")
	cmd.Flags().BoolVar(&flagFetch, "fetch", false, "Fetch and extract every listed article")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Read a saved listing page instead of fetching")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch a day's matches and save them as that day's snapshot",
		Args:  cobra.NoArgs,
		RunE:  runSnapshot,
	}
	cmd.Flags().StringVar(&flagDate, "date", "", "Day to snapshot, YYYY-MM-DD (default today)")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily snapshot scheduler",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// setup loads configuration and configures logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		loaded.DataDir = flagDataDir
	}
	cfg = loaded

	// One-shot commands stay quiet unless asked; serve logs at the configured level.
	level := logger.LevelWarn
	if cmd.Name() == "serve" {
		level = logger.ParseLevel(cfg.LogLevel)
	}
	if flagVerbose {
		level = logger.LevelDebug
	}

	if cfg.Dev {
		logger.SetDefault(logger.NewConsole(level, cmd.ErrOrStderr()))
	} else {
		logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	}

	return nil
}

func newScraper() *scraper.Scraper {
	return scraper.New(
		scraper.WithBaseURL(cfg.BaseURL),
		scraper.WithTimeout(cfg.Timeout()),
		scraper.WithUserAgents(cfg.UserAgents),
		scraper.WithMaxRetries(cfg.MaxRetries),
		scraper.WithRateLimit(cfg.RequestsPerSecond),
	)
}

// buildFilter turns the matches filter flags into a filter.
func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Leagues = append(f.Leagues, flagLeagues...)
	f.Teams = append(f.Teams, flagTeams...)
	f.Channels = append(f.Channels, flagChannels...)
	f.ScoredOnly = flagScored

	if flagBetween != "" {
		from, to, err := filter.ParseTimeRange(flagBetween)
		if err != nil {
			return nil, fmt.Errorf("invalid --between: %w", err)
		}
		f.KickoffFrom, f.KickoffTo = from, to
	}
	return f, nil
}

func resolveDate() (string, error) {
	if flagDate == "" {
		return match.Today(time.Now()), nil
	}
	if err := match.ValidateDate(flagDate); err != nil {
		return "", err
	}
	return flagDate, nil
}

// parseFile reads a saved page for the --from-file flags.
func parseFile(path string) (*extract.Extractor, *goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := extract.Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return extract.New(extract.WithBaseURL(cfg.BaseURL)), doc, nil
}

func runMatches(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, FormatText, FormatJSON, FormatICS)
	if err != nil {
		return err
	}
	order, ok := parseSortOrder(flagSort)
	if !ok {
		return fmt.Errorf("invalid sort: %s (must be 'document', 'league' or 'kickoff')", flagSort)
	}
	date, err := resolveDate()
	if err != nil {
		return err
	}
	f, err := buildFilter()
	if err != nil {
		return err
	}

	var matches []match.Match
	if flagFromFile != "" {
		ex, doc, err := parseFile(flagFromFile)
		if err != nil {
			return err
		}
		if matches, err = ex.Matches(doc); err != nil {
			return fmt.Errorf("extracting matches: %w", err)
		}
	} else {
		logger.Debug("fetching matches", logger.Fields{"date": date, "base_url": cfg.BaseURL})
		if matches, err = newScraper().FetchMatches(cmd.Context(), date); err != nil {
			return fmt.Errorf("fetching matches: %w", err)
		}
	}

	if !f.IsEmpty() {
		logger.Debug("filtering matches", logger.Fields{"filter": f.String(), "before": len(matches)})
		matches = f.Apply(matches)
	}
	sortMatches(matches, order)

	result := &MatchesResult{
		Date:      date,
		FetchedAt: time.Now().UTC(),
		Count:     len(matches),
		Matches:   matches,
	}
	if err := WriteMatches(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func runArticle(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}
	id := args[0]

	var article match.Article
	if flagFromFile != "" {
		ex, doc, err := parseFile(flagFromFile)
		if err != nil {
			return err
		}
		article, err = ex.Article(doc, id)
		if err != nil {
			return fmt.Errorf("extracting article: %w", err)
		}
	} else {
		article, err = newScraper().FetchArticle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching article: %w", err)
		}
	}

	return WriteArticles(cmd.OutOrStdout(), []match.Article{article}, format, true)
}

func runArticles(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}

	sc := newScraper()

	var ids []string
	if flagFromFile != "" {
		ex, doc, err := parseFile(flagFromFile)
		if err != nil {
			return err
		}
		ids = ex.ArticleIDs(doc, flagLimit)
	} else if ids, err = sc.FetchArticleIDs(cmd.Context(), flagLimit); err != nil {
		return fmt.Errorf("fetching article list: %w", err)
	}

	if !flagFetch {
		return WriteIDs(cmd.OutOrStdout(), ids, format)
	}

	articles, err := sc.FetchArticles(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("fetching articles: %w", err)
	}
	return WriteArticles(cmd.OutOrStdout(), articles, format, false)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	date, err := resolveDate()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	res, err := scheduler.SaveDailyMatches(cmd.Context(), newScraper(), store, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %d matches for %s to %s\n", res.Saved, date, store.Dir())
	if len(res.Changes) == 0 {
		fmt.Fprintln(out, "No changes since the last snapshot.")
		return nil
	}
	fmt.Fprintf(out, "%d changes since the last snapshot:\n", len(res.Changes))
	for _, c := range res.Changes {
		fmt.Fprintf(out, "  %s\n", c)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	sc := newScraper()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hour, minute, err := cfg.SnapshotClock()
	if err != nil {
		return err
	}
	srv := api.New(sc, sc, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		Snapshots:   store,
		ArticleTTL:  cfg.ArticleTTL(),
	})

	sched, err := scheduler.New(hour, minute, scheduler.DailySnapshotJob(sc, store, time.Now))
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if ttl := cfg.ArticleTTL(); ttl > 0 {
		if err := sched.Every("article-cache-prune", ttl, srv.PruneArticles); err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", nil, err)
		}
	}()

	logger.Info("filgoal serving", logger.Fields{
		"addr":     cfg.Addr(),
		"data_dir": store.Dir(),
		"base_url": cfg.BaseURL,
	})
	return srv.Listen(cfg.Addr())
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
