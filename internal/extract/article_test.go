package extract_test

import (
	"os"
	"strings"
	"testing"

	"github.com/pfrederiksen/filgoal/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Article_Fixture(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/article.html")
	require.NoError(t, err)
	doc := mustParse(t, string(data))

	article, err := extract.New().Article(doc, "500001")
	require.NoError(t, err)

	assert.Equal(t, "500001", article.ID)
	assert.Equal(t, "https://www.filgoal.com/articles/500001", article.URL)
	assert.Equal(t, strp("الأهلي يفوز على الزمالك في القمة"), article.Title)
	assert.Equal(t, strp("السبت، 18 أكتوبر 2026 - 22:10"), article.Date)
	assert.Equal(t, strp("كتب: محمد أحمد"), article.Author)
	assert.Equal(t, strp("https://img.filgoal.com/articles/lead.jpg"), article.Image)

	assert.Equal(t, []string{
		"Match preview",
		"فاز الأهلي على الزمالك بهدفين مقابل هدف.",
		"سجل للأهلي وسام أبو علي",
	}, article.Blocks)
	require.NotNil(t, article.Content)
	assert.Equal(t, 1, strings.Count(*article.Content, "Match preview"))
	assert.Equal(t, strings.Join(article.Blocks, "\n\n"), *article.Content)
	assert.NotContains(t, *article.Content, "اقرأ أيضا", "related block is removed")

	t.Run("does not modify the caller's document", func(t *testing.T) {
		assert.Equal(t, 1, doc.Find(".related-news").Length())
	})
}

func TestExtractor_Article(t *testing.T) {
	t.Parallel()

	e := extract.New()

	t.Run("nested duplicate text appears once", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<article><p><strong>Match preview</strong></p><p>Match preview</p><p><em>Other</em></p></article>`)
		article, err := e.Article(doc, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Match preview", "Other"}, article.Blocks)
		assert.Equal(t, strp("Match preview\n\nOther"), article.Content)
	})

	t.Run("falls back to meta tags", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head>
			<meta property="og:title" content="Meta title">
			<meta property="og:image" content="https://cdn.example.com/a.jpg">
			<meta property="article:published_time" content="2026-10-18T20:00:00+03:00">
			<meta name="author" content="Desk">
		</head><body><div class="article-body"><p>Body</p></div></body></html>`)

		article, err := e.Article(doc, "2")
		require.NoError(t, err)
		assert.Equal(t, strp("Meta title"), article.Title)
		assert.Equal(t, strp("https://cdn.example.com/a.jpg"), article.Image)
		assert.Equal(t, strp("2026-10-18T20:00:00+03:00"), article.Date, "date is passed through verbatim")
		assert.Equal(t, strp("Desk"), article.Author)
		assert.Equal(t, []string{"Body"}, article.Blocks)
	})

	t.Run("more specific selectors win", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<body><h1>Generic</h1><div class="details"><h1>Specific</h1>
			<img data-src="//cdn.example.com/lazy.jpg"></div></body>`)

		article, err := e.Article(doc, "3")
		require.NoError(t, err)
		assert.Equal(t, strp("Specific"), article.Title)
		assert.Equal(t, strp("https://cdn.example.com/lazy.jpg"), article.Image)
	})

	t.Run("missing fields are nil", func(t *testing.T) {
		t.Parallel()

		article, err := e.Article(mustParse(t, `<html><body><div></div></body></html>`), "4")
		require.NoError(t, err)
		assert.Nil(t, article.Title)
		assert.Nil(t, article.Date)
		assert.Nil(t, article.Author)
		assert.Nil(t, article.Image)
		assert.Nil(t, article.Content)
		assert.NotNil(t, article.Blocks)
		assert.Empty(t, article.Blocks)
		assert.Equal(t, "https://www.filgoal.com/articles/4", article.URL)
	})

	t.Run("related blocks of every flavour are dropped", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<div class="article-body"><p>Keep</p>
			<div class="related"><p>R1</p></div>
			<section class="related-articles"><li>R2</li></section>
			<aside data-related="1"><h4>R3</h4></aside></div>`)

		article, err := e.Article(doc, "5")
		require.NoError(t, err)
		assert.Equal(t, []string{"Keep"}, article.Blocks)
	})
}
