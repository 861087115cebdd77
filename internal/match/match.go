package match

import "strings"

const (
	// BaseURL is the site every canonical URL is resolved against.
	BaseURL = "https://www.filgoal.com"

	// NoScore is the display placeholder for a match that has no score yet.
	NoScore = "-"

	// UnknownLeague is used when neither the heading nor the URL names the competition.
	UnknownLeague = "غير معروف"
)

// Match represents one fixture listed on the matches page
type Match struct {
	ID        string  `json:"match_id"`
	League    string  `json:"league"`
	HomeTeam  *string `json:"home_team"`
	AwayTeam  *string `json:"away_team"`
	HomeScore string  `json:"home_score"`
	AwayScore string  `json:"away_score"`
	Status    *string `json:"status"`
	Kickoff   *string `json:"time"`
	Stadium   *string `json:"stadium"`
	Channel   *string `json:"channel"`
	HomeLogo  *string `json:"home_logo"`
	AwayLogo  *string `json:"away_logo"`
	URL       string  `json:"url"`
}

// Article represents a single news article
type Article struct {
	ID      string   `json:"id"`
	Title   *string  `json:"title"`
	Date    *string  `json:"date"` // verbatim, not parsed
	Author  *string  `json:"author"`
	Image   *string  `json:"image"`
	Blocks  []string `json:"blocks"`
	Content *string  `json:"content"`
	URL     string   `json:"url"`
}

// Optional returns a pointer to the trimmed value, or nil when nothing is left.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ArticleURL returns the canonical URL of an article on base.
func ArticleURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/articles/" + id
}

// NewArticle returns an article carrying only its identity fields.
func NewArticle(base, id string) Article {
	return Article{
		ID:     id,
		Blocks: []string{},
		URL:    ArticleURL(base, id),
	}
}

// HasScore reports whether both sides carry a real score.
func (m Match) HasScore() bool {
	return m.HomeScore != NoScore && m.AwayScore != NoScore
}
