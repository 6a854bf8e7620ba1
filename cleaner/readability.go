package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the shortest readable text (in characters) accepted
// as a product description.
const minContentLength = 50

// ExtractContent picks the main content of a product page with Readability.
//
// The raw page is returned instead (ok false) when the URL does not parse,
// readability fails, the text is shorter than minContentLength, or the
// page has specification tables that readability dropped.
func ExtractContent(rawHTML string, sourceURL string) (article readability.Article, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("spec sheet: invalid product URL, using raw page",
			"url", sourceURL, "error", err,
		)
		return fallbackArticle(rawHTML), false
	}

	article, err = readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("spec sheet: readability failed, using raw page",
			"url", sourceURL, "error", err,
		)
		return fallbackArticle(rawHTML), false
	}

	if n := len(strings.TrimSpace(article.TextContent)); n < minContentLength {
		slog.Debug("spec sheet: description too short, using raw page",
			"url", sourceURL, "length", n,
		)
		return fallbackArticle(rawHTML), false
	}

	if droppedTables(rawHTML, article.Content) {
		slog.Debug("spec sheet: readability dropped the spec tables, using raw page",
			"url", sourceURL,
		)
		return fallbackArticle(rawHTML), false
	}

	return article, true
}

// droppedTables reports whether the page has a table and the extracted
// content has none.
func droppedTables(rawHTML, content string) bool {
	return hasTable(rawHTML) && !hasTable(content)
}

func hasTable(s string) bool {
	return strings.Contains(strings.ToLower(s), "<table")
}

func fallbackArticle(rawHTML string) readability.Article {
	return readability.Article{
		Content:     rawHTML,
		TextContent: rawHTML,
	}
}
