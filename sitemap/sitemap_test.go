package sitemap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/skulookup/config"
	"github.com/use-agent/skulookup/models"
)

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		fmt.Fprintf(&b, "<url><loc>%s</loc><changefreq>daily</changefreq></url>", l)
	}
	b.WriteString(`</urlset>`)
	return b.String()
}

func testConfig(url string) config.SitemapConfig {
	return config.SitemapConfig{
		URL:           url,
		ProductMarker: "/en/p/",
		Timeout:       2 * time.Second,
		MaxBodyBytes:  1 << 20,
		FollowIndex:   true,
	}
}

func TestParse_URLSet(t *testing.T) {
	doc, err := Parse(strings.NewReader(urlset(
		"https://www.frigidaire.com/en/p/FGID2479SF",
		"  https://www.frigidaire.com/en/about  ",
	)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.IsIndex() {
		t.Error("urlset should not be reported as an index")
	}
	want := []string{"https://www.frigidaire.com/en/p/FGID2479SF", "https://www.frigidaire.com/en/about"}
	if len(doc.URLs) != len(want) {
		t.Fatalf("URLs = %q, want %q", doc.URLs, want)
	}
	for i := range want {
		if doc.URLs[i] != want[i] {
			t.Errorf("URLs[%d] = %q, want %q", i, doc.URLs[i], want[i])
		}
	}
}

func TestParse_IgnoresOtherNamespaces(t *testing.T) {
	body := `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:x="urn:other">
		<x:url><x:loc>https://example.com/en/p/WRONG</x:loc></x:url>
		<url><loc>https://example.com/en/p/RIGHT</loc></url>
	</urlset>`
	doc, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.URLs) != 1 || doc.URLs[0] != "https://example.com/en/p/RIGHT" {
		t.Errorf("URLs = %q, want only the sitemaps.org entry", doc.URLs)
	}
}

func TestParse_SitemapIndex(t *testing.T) {
	body := `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
		<sitemap><loc>https://example.com/a.xml</loc></sitemap>
		<sitemap><loc>https://example.com/b.xml</loc></sitemap>
	</sitemapindex>`
	doc, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.IsIndex() || len(doc.Sitemaps) != 2 {
		t.Errorf("Sitemaps = %q, want two children", doc.Sitemaps)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unclosed", `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>x</loc>`},
		{"mismatched", `<urlset><url></urlset></url>`},
		{"empty", ``},
		{"plain text", `service unavailable`},
		{"second root", urlset("https://x.com/en/p/AAA1") + "<urlset><url>"},
		{"trailing text", urlset("https://x.com/en/p/AAA1") + "garbage"},
		{"trailing markup", urlset("https://x.com/en/p/AAA1") + "garbage & <"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.body)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParse_TrailingMiscAllowed(t *testing.T) {
	body := urlset("https://x.com/en/p/AAA1") + "\n<!-- generated -->\n<?cache hit?>\n"
	doc, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.URLs) != 1 {
		t.Errorf("URLs = %v", doc.URLs)
	}
}

func TestNormalizeSKU(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"fgid2479sf", "FGID2479SF"},
		{" FGID2479SF ", "FGID2479SF"},
		{"FGID2479SF", "FGID2479SF"},
		{"/grmc2273cf-c1/", "GRMC2273CF-C1"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSKU(tt.in); got != tt.want {
			t.Errorf("NormalizeSKU(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSKUFromURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.frigidaire.com/en/p/FGID2479SF", "FGID2479SF"},
		{"https://www.frigidaire.com/en/p/kitchen/fgid2479sf/", "FGID2479SF"},
		{"https://www.frigidaire.com/en/p/GRMC2273CF-C1", "GRMC2273CF-C1"},
	}
	for _, tt := range tests {
		if got := SKUFromURL(tt.in); got != tt.want {
			t.Errorf("SKUFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildIndex_DistinctSKUsLastWins(t *testing.T) {
	urls := []string{
		"https://x.com/en/p/AAA1",
		"https://x.com/en/p/range/bbb2",
		"https://x.com/en/about",
		"https://x.com/en/p/aaa1/",
		"https://x.com/fr/p/CCC3",
		"https://x.com/en/p/kitchen/BBB2",
	}

	idx := BuildIndex(urls, "/en/p/")

	if idx.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (index: %v)", idx.Len(), idx)
	}
	if got := idx["AAA1"]; got != "https://x.com/en/p/aaa1/" {
		t.Errorf("AAA1 = %q, want last URL in document order", got)
	}
	if got := idx["BBB2"]; got != "https://x.com/en/p/kitchen/BBB2" {
		t.Errorf("BBB2 = %q, want last URL in document order", got)
	}
}

func TestBuildIndex_NoProductURLs(t *testing.T) {
	idx := BuildIndex([]string{"https://x.com/en/about", "https://x.com/en/support"}, "/en/p/")
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
	if _, ok := idx.Lookup("ABOUT"); ok {
		t.Error("lookup in an empty index should report not found")
	}
}

func TestIndex_LookupIsNormalized(t *testing.T) {
	idx := BuildIndex([]string{"https://www.frigidaire.com/en/p/FGID2479SF"}, "/en/p/")
	for _, in := range []string{"fgid2479sf", " FGID2479SF ", "FGID2479SF", "/fgid2479sf/"} {
		u, ok := idx.Lookup(in)
		if !ok || u != "https://www.frigidaire.com/en/p/FGID2479SF" {
			t.Errorf("Lookup(%q) = (%q, %v)", in, u, ok)
		}
	}
}

func TestIndexer_Build(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, urlset(
			"https://www.frigidaire.com/en/p/FGID2479SF",
			"https://www.frigidaire.com/en/support",
		))
	}))
	defer ts.Close()

	idx, err := NewIndexer(testConfig(ts.URL+"/sitemap.xml"), ts.Client()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := map[string]string{"FGID2479SF": "https://www.frigidaire.com/en/p/FGID2479SF"}
	if len(idx) != len(want) || idx["FGID2479SF"] != want["FGID2479SF"] {
		t.Errorf("index = %v, want %v", idx, want)
	}
	if _, ok := idx.Lookup("fgid2479sf"); !ok {
		t.Error("lower-case lookup should succeed")
	}
}

func TestIndexer_FollowsSitemapIndex(t *testing.T) {
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
			<sitemap><loc>%[1]s/products-1.xml</loc></sitemap>
			<sitemap><loc>%[1]s/missing.xml</loc></sitemap>
			<sitemap><loc>%[1]s/products-2.xml</loc></sitemap>
		</sitemapindex>`, base)
	})
	mux.HandleFunc("/products-1.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, urlset("https://x.com/en/p/AAA1", "https://x.com/en/p/old/BBB2"))
	})
	mux.HandleFunc("/products-2.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, urlset("https://x.com/en/p/new/BBB2"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	base = ts.URL

	idx, err := NewIndexer(testConfig(ts.URL+"/sitemap.xml"), ts.Client()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (index: %v)", idx.Len(), idx)
	}
	if idx["BBB2"] != "https://x.com/en/p/new/BBB2" {
		t.Errorf("BBB2 = %q, want the later child's URL", idx["BBB2"])
	}
}

func TestIndexer_NonSuccessStatusIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	idx, err := NewIndexer(testConfig(ts.URL), ts.Client()).Build(context.Background())
	if models.CodeOf(err) != models.ErrCodeIndexUnavailable {
		t.Fatalf("error = %v, want %s", err, models.ErrCodeIndexUnavailable)
	}
	if idx == nil || idx.Len() != 0 {
		t.Errorf("index = %v, want empty non-nil index", idx)
	}
}

func TestIndexer_NetworkFailureIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	idx, err := NewIndexer(testConfig(url), nil).Build(context.Background())
	if models.CodeOf(err) != models.ErrCodeIndexUnavailable {
		t.Fatalf("error = %v, want %s", err, models.ErrCodeIndexUnavailable)
	}
	if idx == nil || idx.Len() != 0 {
		t.Errorf("index = %v, want empty non-nil index", idx)
	}
}

func TestIndexer_MalformedXMLPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>`)
	}))
	defer ts.Close()

	idx, err := NewIndexer(testConfig(ts.URL), ts.Client()).Build(context.Background())
	if models.CodeOf(err) != models.ErrCodeIndexParse {
		t.Fatalf("error = %v, want %s", err, models.ErrCodeIndexParse)
	}
	if idx != nil {
		t.Errorf("index = %v, want nil on parse failure", idx)
	}
	var le *models.LookupError
	if !errors.As(err, &le) || le.Err == nil {
		t.Error("parse error should wrap the decoder error")
	}
}

func TestIndexer_OversizedBodyIsUnavailable(t *testing.T) {
	body := urlset("https://x.com/en/p/AAA1", "https://x.com/en/p/BBB2")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer ts.Close()

	tests := []struct {
		name    string
		max     int64
		code    string
		entries int
	}{
		{"one byte over", int64(len(body)) - 1, models.ErrCodeIndexUnavailable, 0},
		{"exactly at limit", int64(len(body)), "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(ts.URL)
			cfg.MaxBodyBytes = tt.max
			idx, err := NewIndexer(cfg, ts.Client()).Build(context.Background())
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Build: %v", err)
				}
			} else if got := models.CodeOf(err); got != tt.code {
				t.Fatalf("code = %s, want %s (err=%v)", got, tt.code, err)
			}
			if idx.Len() != tt.entries {
				t.Errorf("entries = %d, want %d", idx.Len(), tt.entries)
			}
		})
	}
}

func TestIndexer_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	cfg := testConfig(ts.URL)
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewIndexer(cfg, ts.Client()).Build(context.Background())
	if models.CodeOf(err) != models.ErrCodeIndexUnavailable {
		t.Fatalf("error = %v, want %s", err, models.ErrCodeIndexUnavailable)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want it to wrap context.DeadlineExceeded", err)
	}
}
