package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var (
	matchIDPattern   = regexp.MustCompile(`/matches/(\d+)`)
	articleIDPattern = regexp.MustCompile(`/articles/(\d+)`)
)

// MatchID extracts the numeric id from a match detail link such as
// "/matches/512345/..." or its absolute form.
func MatchID(path string) (string, bool) {
	m := matchIDPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ArticleID extracts the numeric id from an article link.
func ArticleID(path string) (string, bool) {
	m := articleIDPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// detailLink returns the href of the first link in a match fragment.
func detailLink(fragment *goquery.Selection) (*goquery.Selection, string, bool) {
	link := fragment.Find("a[href]").First()
	if link.Length() == 0 {
		return nil, "", false
	}
	href := attrValue(link, "href")
	if href == "" {
		return nil, "", false
	}
	return link, href, true
}

// ArticleIDs scans anchors for article links and returns up to limit distinct
// ids in the order they first appear. A limit of zero or less yields none.
func (e *Extractor) ArticleIDs(doc *goquery.Document, limit int) []string {
	ids := make([]string, 0)
	if limit <= 0 || checkDocument(doc) != nil {
		return ids
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		id, ok := ArticleID(attrValue(a, "href"))
		if ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
		return len(ids) < limit
	})

	return ids
}
