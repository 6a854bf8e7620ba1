package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/skulookup/cache"
	"github.com/use-agent/skulookup/cleaner"
	"github.com/use-agent/skulookup/config"
	"github.com/use-agent/skulookup/engine"
	"github.com/use-agent/skulookup/extractor"
	"github.com/use-agent/skulookup/models"
	"github.com/use-agent/skulookup/sitemap"
)

const productHTML = `<html><head><title>FGID2479SF</title></head><body>
<h1>Frigidaire Gallery 24" Dishwasher</h1>
<span class="price-value">$749.00</span>
<span class="price-strike-through">$999.00</span>
<span class="bvseo-ratingValue">4.5</span>
<span class="Utility-TextStrike-Through-Price">$1,049.00</span>
<img class="primary-image" src="https://cdn.example.com/fgid.jpg">
</body></html>`

// site serves a sitemap at /sitemap.xml and product pages under /en/p/.
type site struct {
	srv           *httptest.Server
	sitemapHits   atomic.Int32
	sitemapStatus atomic.Int32
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{}
	s.sitemapStatus.Store(http.StatusOK)
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		s.sitemapHits.Add(1)
		if code := int(s.sitemapStatus.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		base := "http://" + r.Host
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>%[1]s/en/p/FGID2479SF</loc></url>
<url><loc>%[1]s/en/p/GONE404</loc></url>
<url><loc>%[1]s/en/c/dishwashers</loc></url>
</urlset>`, base)
	})
	mux.HandleFunc("/en/p/FGID2479SF", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productHTML)
	})
	mux.HandleFunc("/en/p/GONE404", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *site) service(t *testing.T, opts ...cache.Option) *Service {
	t.Helper()
	ix := sitemap.NewIndexer(config.SitemapConfig{
		URL:           s.srv.URL + "/sitemap.xml",
		ProductMarker: "/en/p/",
		Timeout:       2 * time.Second,
		MaxBodyBytes:  1 << 20,
	}, s.srv.Client())
	fetcher := engine.NewHTTPEngineWithClient(s.srv.Client(), "Mozilla/5.0")
	return NewService(ix, time.Hour, extractor.New(fetcher, 2*time.Second), cleaner.NewCleaner(), opts...)
}

func TestLookup_Found(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	rec, err := svc.Lookup(context.Background(), "FGID2479SF")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want := models.ProductRecord{
		Title:         `Frigidaire Gallery 24" Dishwasher`,
		Price:         "$749.00",
		OriginalPrice: "$999.00",
		Rating:        "4.5",
		ImageURL:      "https://cdn.example.com/fgid.jpg",
		URL:           s.srv.URL + "/en/p/FGID2479SF",
	}
	if *rec != want {
		t.Errorf("record = %+v\nwant %+v", *rec, want)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	rec, err := svc.Lookup(context.Background(), "  fgid2479sf ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.HasSuffix(rec.URL, "/en/p/FGID2479SF") {
		t.Errorf("URL = %q", rec.URL)
	}
}

func TestLookup_IndexBuiltOncePerTTL(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Lookup(context.Background(), "FGID2479SF"); err != nil {
			t.Fatalf("Lookup %d: %v", i, err)
		}
	}
	if got := s.sitemapHits.Load(); got != 1 {
		t.Errorf("sitemap fetched %d times, want 1", got)
	}
}

func TestLookup_IndexRebuiltAfterTTL(t *testing.T) {
	s := newSite(t)
	now := time.Unix(1_700_000_000, 0)
	svc := s.service(t, cache.WithClock(func() time.Time { return now }))

	if _, err := svc.Lookup(context.Background(), "FGID2479SF"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	now = now.Add(time.Hour + time.Second)
	if _, err := svc.Lookup(context.Background(), "FGID2479SF"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := s.sitemapHits.Load(); got != 2 {
		t.Errorf("sitemap fetched %d times, want 2", got)
	}
}

func TestLookup_Errors(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	tests := []struct {
		name string
		sku  string
		code string
	}{
		{"empty", "   ", models.ErrCodeInvalidInput},
		{"too long", strings.Repeat("A", 31), models.ErrCodeInvalidInput},
		{"not in sitemap", "NOPE123", models.ErrCodeSKUNotFound},
		{"category page is not a product", "DISHWASHERS", models.ErrCodeSKUNotFound},
		{"product page 404", "GONE404", models.ErrCodePageFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := svc.Lookup(context.Background(), tt.sku)
			if rec != nil {
				t.Errorf("record = %+v, want nil", rec)
			}
			if got := models.CodeOf(err); got != tt.code {
				t.Errorf("code = %s, want %s (err=%v)", got, tt.code, err)
			}
		})
	}
}

func TestLookup_UnavailableSitemapCachedAsEmpty(t *testing.T) {
	s := newSite(t)
	s.sitemapStatus.Store(http.StatusServiceUnavailable)
	svc := s.service(t)

	_, err := svc.Lookup(context.Background(), "FGID2479SF")
	if got := models.CodeOf(err); got != models.ErrCodeIndexUnavailable {
		t.Fatalf("first lookup code = %s, want %s", got, models.ErrCodeIndexUnavailable)
	}

	// The sitemap recovers, but the empty index is served until the TTL ends.
	s.sitemapStatus.Store(http.StatusOK)
	_, err = svc.Lookup(context.Background(), "FGID2479SF")
	if got := models.CodeOf(err); got != models.ErrCodeSKUNotFound {
		t.Errorf("second lookup code = %s, want %s", got, models.ErrCodeSKUNotFound)
	}
	if got := s.sitemapHits.Load(); got != 1 {
		t.Errorf("sitemap fetched %d times, want 1", got)
	}

	// A forced refresh picks up the recovered sitemap.
	status, err := svc.RefreshIndex(context.Background())
	if err != nil {
		t.Fatalf("RefreshIndex: %v", err)
	}
	if status.Entries != 2 {
		t.Errorf("Entries = %d, want 2", status.Entries)
	}
	if _, err := svc.Lookup(context.Background(), "FGID2479SF"); err != nil {
		t.Errorf("Lookup after refresh: %v", err)
	}
}

type brokenBuilder struct{ calls atomic.Int32 }

func (b *brokenBuilder) Build(context.Context) (sitemap.Index, error) {
	b.calls.Add(1)
	return nil, models.NewLookupError(models.ErrCodeIndexParse, "sitemap is not valid XML", nil)
}

func TestLookup_ParseFailureNotCached(t *testing.T) {
	b := &brokenBuilder{}
	svc := NewService(b, time.Hour, nil, nil)

	for i := 0; i < 2; i++ {
		_, _, err := svc.Resolve(context.Background(), "FGID2479SF")
		if got := models.CodeOf(err); got != models.ErrCodeIndexParse {
			t.Errorf("code = %s, want %s", got, models.ErrCodeIndexParse)
		}
	}
	if got := b.calls.Load(); got != 2 {
		t.Errorf("builder called %d times, want 2", got)
	}
	if svc.IndexStatus().Entries != 0 || !svc.IndexStatus().Stale {
		t.Errorf("status = %+v, want empty and stale", svc.IndexStatus())
	}
}

func TestLookupMSRP(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	res, err := svc.LookupMSRP(context.Background(), "fgid2479sf")
	if err != nil {
		t.Fatalf("LookupMSRP: %v", err)
	}
	if res.MSRP != "$1,049.00" {
		t.Errorf("MSRP = %q", res.MSRP)
	}

	res = svc.MSRPByURL(context.Background(), s.srv.URL+"/en/p/GONE404")
	if res.MSRP != models.MSRPPageLoadError {
		t.Errorf("MSRP = %q, want %q", res.MSRP, models.MSRPPageLoadError)
	}
}

func TestLookupTimed(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	rec, timing, err := svc.LookupTimed(context.Background(), "FGID2479SF")
	if err != nil {
		t.Fatalf("LookupTimed: %v", err)
	}
	if rec == nil {
		t.Fatal("record is nil")
	}
	if timing.TotalMs < timing.FetchMs || timing.TotalMs < 0 {
		t.Errorf("timing = %+v", timing)
	}
}

func TestSpecSheet(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	sheet, err := svc.SpecSheet(context.Background(), "FGID2479SF")
	if err != nil {
		t.Fatalf("SpecSheet: %v", err)
	}
	if !strings.Contains(sheet.Markdown, "Dishwasher") {
		t.Errorf("markdown = %q", sheet.Markdown)
	}
	if sheet.Title == "" {
		t.Error("Title should not be empty")
	}
}

func TestIndexStatus(t *testing.T) {
	s := newSite(t)
	svc := s.service(t)

	if st := svc.IndexStatus(); st.Entries != 0 || !st.Stale {
		t.Errorf("before first lookup: %+v", st)
	}
	if _, _, err := svc.Resolve(context.Background(), "FGID2479SF"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	st := svc.IndexStatus()
	if st.Entries != 2 || st.Stale {
		t.Errorf("after lookup: %+v", st)
	}
	if got := st.ExpiresAt.Sub(st.RefreshedAt); got != time.Hour {
		t.Errorf("ExpiresAt - RefreshedAt = %v, want 1h", got)
	}
}
