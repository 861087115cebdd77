package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// stageSeparator splits a competition name from its round, e.g.
// "الدوري المصري - الجولة 5".
const stageSeparator = " - "

// slugLeaguePattern finds the competition after the "في" (in) token of a
// match slug such as "الأهلي-و-الزمالك-في-الدوري-المصري".
var slugLeaguePattern = regexp.MustCompile(`(?:^|[-_/])في[-_]([^/?#]+)`)

// leagueStrategy returns a league name or false when it has nothing to offer.
type leagueStrategy func(heading *goquery.Selection, detailPath string) (string, bool)

// leagueStrategies are tried in order; the first success wins.
var leagueStrategies = []leagueStrategy{
	leagueFromHeading,
	leagueFromSlug,
}

// ResolveLeague names the competition of a league block from its heading,
// else from the detail link slug, else match.UnknownLeague.
func ResolveLeague(heading *goquery.Selection, detailPath string) string {
	for _, strategy := range leagueStrategies {
		if name, ok := strategy(heading, detailPath); ok {
			return name
		}
	}
	return match.UnknownLeague
}

func leagueFromHeading(heading *goquery.Selection, _ string) (string, bool) {
	if heading == nil || heading.Length() == 0 {
		return "", false
	}

	text := cleanText(heading.ChildrenFiltered("span").First())
	if text == "" {
		text = cleanText(heading)
	}

	name, _, _ := strings.Cut(text, stageSeparator)
	name = strings.TrimSpace(name)
	return name, name != ""
}

func leagueFromSlug(_ *goquery.Selection, detailPath string) (string, bool) {
	path := detailPath
	if decoded, err := url.PathUnescape(detailPath); err == nil {
		path = decoded
	}

	m := slugLeaguePattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}

	name := strings.NewReplacer("-", " ", "_", " ").Replace(m[1])
	name = strings.Join(strings.Fields(name), " ")
	return name, name != ""
}
