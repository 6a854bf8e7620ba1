// Package cleaner turns a product page into a readable Markdown spec sheet.
package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/skulookup/models"
)

// Cleaner holds the shared Markdown converter.
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{mdConverter: newMarkdownConverter()}
}

// SpecSheet extracts the main content of a product page and renders it as
// Markdown. pageTitle is used when readability finds no title.
func (c *Cleaner) SpecSheet(rawHTML, sourceURL, pageTitle string) (*models.SpecSheet, error) {
	article, _ := ExtractContent(rawHTML, sourceURL)

	md, err := ToMarkdown(c.mdConverter, article.Content, sourceURL)
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeInternal, "failed to convert page to markdown", err)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = pageTitle
	}

	return &models.SpecSheet{
		Title:    title,
		Excerpt:  strings.TrimSpace(article.Excerpt),
		Markdown: strings.TrimSpace(md),
		URL:      sourceURL,
	}, nil
}
