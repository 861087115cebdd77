package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/filgoal/internal/match"
)

// selector reads either the text of the first matching element or, when attrs
// is set, the first non-empty attribute among attrs.
type selector struct {
	css   string
	attrs []string
}

// Selector chains, most specific first.
var (
	titleSelectors = []selector{
		{css: ".article-title h1"},
		{css: ".details h1"},
		{css: "article h1"},
		{css: "h1"},
		{css: `meta[property="og:title"]`, attrs: []string{"content"}},
	}
	dateSelectors = []selector{
		{css: ".article-date"},
		{css: ".details .date"},
		{css: "time[datetime]"},
		{css: `meta[property="article:published_time"]`, attrs: []string{"content"}},
	}
	authorSelectors = []selector{
		{css: ".article-author"},
		{css: ".details .author"},
		{css: `[rel="author"]`},
		{css: `meta[name="author"]`, attrs: []string{"content"}},
	}
	imageSelectors = []selector{
		{css: ".article-img img", attrs: []string{"src", "data-src"}},
		{css: ".details img", attrs: []string{"src", "data-src"}},
		{css: `meta[property="og:image"]`, attrs: []string{"content"}},
	}
)

// bodySelectors locate the article body; the whole page is the last resort.
var bodySelectors = []string{".article-body", ".details .dtls", ".details", "article", "body"}

const (
	relatedSelector = `.related, .related-news, .related-articles, [data-related]`
	blockSelector   = "h1, h2, h3, h4, h5, h6, p, li, strong, em, b"
	blockSeparator  = "\n\n"
)

// Article extracts one article. Each field is resolved on its own so a page
// missing some of them still yields a useful record. When the document is
// unusable the returned record carries only its id and URL, alongside the error.
func (e *Extractor) Article(doc *goquery.Document, id string) (match.Article, error) {
	article := match.NewArticle(e.BaseURL(), id)
	if err := checkDocument(doc); err != nil {
		return article, err
	}

	article.Title = firstOf(doc.Selection, titleSelectors)
	article.Date = firstOf(doc.Selection, dateSelectors)
	article.Author = firstOf(doc.Selection, authorSelectors)
	if img := firstOf(doc.Selection, imageSelectors); img != nil {
		article.Image = match.Optional(NormalizeImageURL(*img))
	}

	article.Blocks = contentBlocks(articleBody(doc))
	if len(article.Blocks) > 0 {
		content := strings.Join(article.Blocks, blockSeparator)
		article.Content = &content
	}

	return article, nil
}

// firstOf returns the first non-empty value produced by the chain.
func firstOf(root *goquery.Selection, chain []selector) *string {
	for _, sel := range chain {
		var value string
		root.Find(sel.css).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if len(sel.attrs) > 0 {
				value = attrValue(s, sel.attrs...)
			} else {
				value = cleanText(s)
			}
			return value == ""
		})
		if v := match.Optional(value); v != nil {
			return v
		}
	}
	return nil
}

// articleBody returns a detached copy of the body with related-content blocks
// removed, leaving the caller's document untouched.
func articleBody(doc *goquery.Document) *goquery.Selection {
	for _, css := range bodySelectors {
		if root := doc.Find(css).First(); root.Length() > 0 {
			body := root.Clone()
			body.Find(relatedSelector).Remove()
			return body
		}
	}
	return nil
}

// contentBlocks collects text blocks in document order, dropping empty ones
// and exact repeats produced by nested elements.
func contentBlocks(body *goquery.Selection) []string {
	blocks := make([]string, 0)
	if body == nil {
		return blocks
	}

	seen := make(map[string]bool)
	body.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		text := cleanText(s)
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		blocks = append(blocks, text)
	})
	return blocks
}
