package sitemap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/skulookup/config"
	"github.com/use-agent/skulookup/models"
)

// Indexer fetches the sitemap and builds the SKU index.
type Indexer struct {
	cfg    config.SitemapConfig
	client *http.Client
}

// NewIndexer creates an Indexer. A nil client uses http.DefaultClient.
func NewIndexer(cfg config.SitemapConfig, client *http.Client) *Indexer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Indexer{cfg: cfg, client: client}
}

// Build fetches the sitemap and returns a fresh index.
//
// Failure modes:
//   - fetch failure or non-2xx status: an empty, non-nil index together with
//     an ErrCodeIndexUnavailable error
//   - malformed XML: a nil index and an ErrCodeIndexParse error
//
// Child sitemaps of a <sitemapindex> are followed one level deep; a child
// that fails is logged and skipped.
func (ix *Indexer) Build(ctx context.Context) (Index, error) {
	start := time.Now()

	doc, err := ix.fetch(ctx, ix.cfg.URL)
	if err != nil {
		if models.CodeOf(err) == models.ErrCodeIndexUnavailable {
			return Index{}, err
		}
		return nil, err
	}

	urls := doc.URLs
	if doc.IsIndex() && ix.cfg.FollowIndex {
		for _, child := range doc.Sitemaps {
			childDoc, err := ix.fetch(ctx, child)
			if err != nil {
				slog.Warn("sitemap: skipping child sitemap", "url", child, "error", err)
				continue
			}
			urls = append(urls, childDoc.URLs...)
		}
	}

	idx := BuildIndex(urls, ix.cfg.ProductMarker)
	slog.Info("sitemap index built",
		"url", ix.cfg.URL,
		"locations", len(urls),
		"skus", idx.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return idx, nil
}

// fetch downloads and parses one sitemap document.
func (ix *Indexer) fetch(ctx context.Context, sitemapURL string) (*Document, error) {
	if ix.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ix.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeIndexUnavailable,
			"invalid sitemap URL", err)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeIndexUnavailable,
			"failed to fetch sitemap", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewLookupError(models.ErrCodeIndexUnavailable,
			fmt.Sprintf("sitemap returned HTTP %d", resp.StatusCode), nil)
	}

	var body io.Reader = resp.Body
	if ix.cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, ix.cfg.MaxBodyBytes+1)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeIndexUnavailable,
			"failed to read sitemap body", err)
	}
	if ix.cfg.MaxBodyBytes > 0 && int64(len(raw)) > ix.cfg.MaxBodyBytes {
		return nil, models.NewLookupError(models.ErrCodeIndexUnavailable,
			fmt.Sprintf("sitemap exceeds size limit of %d bytes", ix.cfg.MaxBodyBytes), nil)
	}

	doc, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewLookupError(models.ErrCodeIndexParse,
			"sitemap is not well-formed XML", err)
	}
	return doc, nil
}
