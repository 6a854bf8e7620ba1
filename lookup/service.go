// Package lookup ties the SKU index to the product page extractor: a SKU
// goes in, a product record (or MSRP, or spec sheet) comes out.
package lookup

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/use-agent/skulookup/cache"
	"github.com/use-agent/skulookup/cleaner"
	"github.com/use-agent/skulookup/extractor"
	"github.com/use-agent/skulookup/models"
	"github.com/use-agent/skulookup/sitemap"
)

// IndexBuilder produces a fresh SKU index. *sitemap.Indexer implements it.
type IndexBuilder interface {
	Build(ctx context.Context) (sitemap.Index, error)
}

// Service answers SKU lookups. It is safe for concurrent use.
type Service struct {
	index     *cache.Value[sitemap.Index]
	extractor *extractor.Extractor
	cleaner   *cleaner.Cleaner
}

// NewService wires the cached index to the extractor. ttl is how long a
// built index is served before the next lookup rebuilds it.
func NewService(builder IndexBuilder, ttl time.Duration, x *extractor.Extractor, cl *cleaner.Cleaner, opts ...cache.Option) *Service {
	return &Service{
		index:     cache.New(ttl, buildFunc(builder), opts...),
		extractor: x,
		cleaner:   cl,
	}
}

// buildFunc caches an unavailable sitemap as an empty index for the whole
// TTL window. Parse failures are not cached.
func buildFunc(builder IndexBuilder) cache.BuildFunc[sitemap.Index] {
	return func(ctx context.Context) (sitemap.Index, error) {
		idx, err := builder.Build(ctx)
		if err != nil {
			slog.Error("sitemap index build failed", "error", err)
			if models.CodeOf(err) == models.ErrCodeIndexUnavailable {
				if idx == nil {
					idx = sitemap.Index{}
				}
				return idx, cache.Keep(err)
			}
			return nil, err
		}
		return idx, nil
	}
}

// NormalizeSKU validates raw user input and returns the lookup key.
func NormalizeSKU(raw string) (string, error) {
	sku := sitemap.NormalizeSKU(raw)
	if sku == "" {
		return "", models.NewLookupError(models.ErrCodeInvalidInput, "SKU is required", nil)
	}
	if utf8.RuneCountInString(sku) > models.MaxSKULength {
		return "", models.NewLookupError(models.ErrCodeInvalidInput, "SKU must be at most 30 characters", nil)
	}
	return sku, nil
}

// Resolve returns the product page URL for a SKU.
//
// A sitemap that could not be fetched is reported as INDEX_UNAVAILABLE to
// the lookup that attempted the fetch; until the TTL expires later lookups
// see an empty index and get SKU_NOT_FOUND.
func (s *Service) Resolve(ctx context.Context, rawSKU string) (sku, productURL string, err error) {
	sku, err = NormalizeSKU(rawSKU)
	if err != nil {
		return "", "", err
	}

	idx, err := s.index.Get(ctx)
	if err != nil {
		code := models.CodeOf(err)
		if code != models.ErrCodeIndexUnavailable && code != models.ErrCodeIndexParse {
			err = models.NewLookupError(models.ErrCodeIndexUnavailable, "sitemap index unavailable", err)
		}
		return sku, "", err
	}

	productURL, ok := idx.Lookup(sku)
	if !ok {
		return sku, "", models.NewLookupError(models.ErrCodeSKUNotFound, "SKU not found in sitemap", nil)
	}
	return sku, productURL, nil
}

// Lookup resolves a SKU and extracts its product record.
func (s *Service) Lookup(ctx context.Context, rawSKU string) (*models.ProductRecord, error) {
	_, productURL, err := s.Resolve(ctx, rawSKU)
	if err != nil {
		return nil, err
	}
	return s.extractor.ExtractRecord(ctx, productURL)
}

// LookupTimed is Lookup with a per-phase timing breakdown.
func (s *Service) LookupTimed(ctx context.Context, rawSKU string) (*models.ProductRecord, models.TimingInfo, error) {
	start := time.Now()
	_, productURL, err := s.Resolve(ctx, rawSKU)
	timing := models.TimingInfo{IndexMs: time.Since(start).Milliseconds()}
	if err != nil {
		timing.TotalMs = timing.IndexMs
		return nil, timing, err
	}

	fetchStart := time.Now()
	record, err := s.extractor.ExtractRecord(ctx, productURL)
	timing.FetchMs = time.Since(fetchStart).Milliseconds()
	timing.TotalMs = time.Since(start).Milliseconds()
	return record, timing, err
}

// LookupMSRP resolves a SKU and reads its MSRP.
func (s *Service) LookupMSRP(ctx context.Context, rawSKU string) (*models.MSRPResult, error) {
	_, productURL, err := s.Resolve(ctx, rawSKU)
	if err != nil {
		return nil, err
	}
	return s.MSRPByURL(ctx, productURL), nil
}

// MSRPByURL reads the MSRP from a caller-supplied product page URL.
func (s *Service) MSRPByURL(ctx context.Context, productURL string) *models.MSRPResult {
	return &models.MSRPResult{
		MSRP: s.extractor.ExtractMSRP(ctx, productURL),
		URL:  productURL,
	}
}

// SpecSheet resolves a SKU and renders its product page as Markdown.
func (s *Service) SpecSheet(ctx context.Context, rawSKU string) (*models.SpecSheet, error) {
	_, productURL, err := s.Resolve(ctx, rawSKU)
	if err != nil {
		return nil, err
	}
	page, err := s.extractor.Fetch(ctx, productURL)
	if err != nil {
		return nil, err
	}
	return s.cleaner.SpecSheet(page.HTML, productURL, page.Title)
}

// IndexStatus describes the cached index without triggering a rebuild.
func (s *Service) IndexStatus() models.IndexStatus {
	idx, builtAt, ok := s.index.Snapshot()
	status := models.IndexStatus{Stale: s.index.Stale()}
	if !ok {
		return status
	}
	status.Entries = idx.Len()
	status.RefreshedAt = builtAt
	status.ExpiresAt = builtAt.Add(s.index.TTL())
	return status
}

// RefreshIndex rebuilds the index now, regardless of its age.
func (s *Service) RefreshIndex(ctx context.Context) (models.IndexStatus, error) {
	_, err := s.index.Refresh(ctx)
	return s.IndexStatus(), err
}
