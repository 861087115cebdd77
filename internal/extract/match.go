package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// Markup hooks of the matches page.
const (
	leagueBlockSelector = ".mc-block"
	fragmentSelector    = ".cin_cntnr"
	teamsSelector       = ".c-i-next"
	homeSelector        = ".f"
	awaySelector        = ".s"
	statusSelector      = ".status"
	auxSelector         = ".match-aux"
)

// Matches extracts every identifiable match from a matches page, in document
// order. Fragments without a usable link or team container are skipped. Only
// the first fragment carrying an id counts, even when it is skipped.
func (e *Extractor) Matches(doc *goquery.Document) ([]match.Match, error) {
	if err := checkDocument(doc); err != nil {
		return nil, err
	}

	matches := make([]match.Match, 0)
	seen := make(map[string]bool)

	doc.Find(leagueBlockSelector).Each(func(_ int, block *goquery.Selection) {
		fragments := block.Find(fragmentSelector)
		league := ResolveLeague(block.Find("h6").First(), firstDetailPath(fragments))

		fragments.Each(func(_ int, fragment *goquery.Selection) {
			_, href, ok := detailLink(fragment)
			if !ok {
				return
			}
			id, ok := MatchID(href)
			if !ok || seen[id] {
				return
			}
			seen[id] = true

			m, ok := e.buildMatch(fragment, league)
			if !ok {
				return
			}
			matches = append(matches, m)
		})
	})

	return matches, nil
}

// firstDetailPath returns the first match link of a block for slug fallback
func firstDetailPath(fragments *goquery.Selection) string {
	var path string
	fragments.EachWithBreak(func(_ int, f *goquery.Selection) bool {
		if _, href, ok := detailLink(f); ok {
			if _, ok := MatchID(href); ok {
				path = href
				return false
			}
		}
		return true
	})
	return path
}

// buildMatch assembles one record, or reports false when the fragment has no
// detail link, no id, or no team container.
func (e *Extractor) buildMatch(fragment *goquery.Selection, league string) (match.Match, bool) {
	link, href, ok := detailLink(fragment)
	if !ok {
		return match.Match{}, false
	}
	id, ok := MatchID(href)
	if !ok {
		return match.Match{}, false
	}

	teams := link.Find(teamsSelector).First()
	if teams.Length() == 0 {
		teams = fragment.Find(teamsSelector).First()
	}
	if teams.Length() == 0 {
		return match.Match{}, false
	}

	home := teams.Find(homeSelector).First()
	away := teams.Find(awaySelector).First()
	aux := resolveAux(fragment.Find(auxSelector).First())

	status := match.Optional(firstText(teams, statusSelector))
	if status == nil {
		status = aux.kickoff
	}

	return match.Match{
		ID:        id,
		League:    league,
		HomeTeam:  teamName(home),
		AwayTeam:  teamName(away),
		HomeScore: teamScore(home),
		AwayScore: teamScore(away),
		Status:    status,
		Kickoff:   aux.kickoff,
		Stadium:   aux.stadium,
		Channel:   aux.channel,
		HomeLogo:  teamLogo(home),
		AwayLogo:  teamLogo(away),
		URL:       e.resolve(href),
	}, true
}

func teamName(side *goquery.Selection) *string {
	if side.Length() == 0 {
		return nil
	}
	return match.Optional(cleanText(side.Find("strong").First()))
}

func teamScore(side *goquery.Selection) string {
	if side.Length() == 0 {
		return match.NoScore
	}
	if score := cleanText(side.Find("b").First()); score != "" {
		return score
	}
	return match.NoScore
}

func teamLogo(side *goquery.Selection) *string {
	if side.Length() == 0 {
		return nil
	}
	return match.Optional(NormalizeImageURL(attrValue(side.Find("img").First(), "src", "data-src")))
}
