// Package extractor fetches a product page and reads the displayed fields
// out of it with fixed CSS selector rules.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/skulookup/engine"
	"github.com/use-agent/skulookup/models"
	"golang.org/x/net/html"
)

// Extractor fetches product pages through an engine and applies the rules.
type Extractor struct {
	fetcher engine.Engine
	timeout time.Duration
}

// New creates an Extractor. timeout bounds each page fetch; zero means none.
func New(fetcher engine.Engine, timeout time.Duration) *Extractor {
	return &Extractor{fetcher: fetcher, timeout: timeout}
}

// Fetch retrieves the raw page, mapping failures to LookupErrors.
// There is no retry.
func (x *Extractor) Fetch(ctx context.Context, pageURL string) (*engine.FetchResult, error) {
	result, err := x.fetcher.Fetch(ctx, &engine.FetchRequest{
		URL:     pageURL,
		Timeout: x.timeout,
	})
	if err == nil {
		return result, nil
	}

	var statusErr *engine.StatusError
	switch {
	case errors.As(err, &statusErr):
		return nil, models.NewLookupError(models.ErrCodePageFetch,
			fmt.Sprintf("product page returned HTTP %d", statusErr.StatusCode), err)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, models.NewLookupError(models.ErrCodeTimeout, "product page fetch timed out", err)
	default:
		return nil, models.NewLookupError(models.ErrCodePageFetch, "failed to fetch product page", err)
	}
}

// ExtractRecord fetches pageURL and returns its product fields. On any
// fetch failure the record is nil; no partial record is returned.
func (x *Extractor) ExtractRecord(ctx context.Context, pageURL string) (*models.ProductRecord, error) {
	result, err := x.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return ParseRecord(result.HTML, pageURL)
}

// ExtractMSRP fetches pageURL and returns the MSRP text, MSRPNotFound when
// the page has none, or MSRPPageLoadError when the page could not be loaded.
func (x *Extractor) ExtractMSRP(ctx context.Context, pageURL string) string {
	result, err := x.Fetch(ctx, pageURL)
	if err != nil {
		slog.Warn("msrp: page load failed", "url", pageURL, "error", err)
		return models.MSRPPageLoadError
	}
	msrp, err := ParseMSRP(result.HTML)
	if err != nil {
		slog.Warn("msrp: page parse failed", "url", pageURL, "error", err)
		return models.MSRPPageLoadError
	}
	return msrp
}

// ParseRecord applies ProductRules to rawHTML. Fields whose selector matches
// nothing are set to NotAvailable; URL echoes pageURL unchanged.
func ParseRecord(rawHTML, pageURL string) (*models.ProductRecord, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodePageFetch, "failed to parse product page", err)
	}

	record := &models.ProductRecord{URL: pageURL}
	for _, rule := range ProductRules {
		v, ok := rule.Apply(doc)
		if !ok {
			v = models.NotAvailable
		}
		rule.set(record, v)
	}
	return record, nil
}

// ParseMSRP applies MSRPRule to rawHTML.
func ParseMSRP(rawHTML string) (string, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return "", err
	}
	if v, ok := MSRPRule.Apply(doc); ok {
		return v, nil
	}
	return models.MSRPNotFound, nil
}

func parseDocument(rawHTML string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}
