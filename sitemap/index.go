package sitemap

import "strings"

// Index maps a normalized SKU to its product page URL.
type Index map[string]string

// NormalizeSKU turns user input or a URL segment into a lookup key:
// surrounding whitespace and slashes are dropped and the rest uppercased.
func NormalizeSKU(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "/")
	return strings.ToUpper(strings.TrimSpace(s))
}

// SKUFromURL derives the SKU from the final path segment of a product URL.
func SKUFromURL(u string) string {
	trimmed := strings.Trim(strings.TrimSpace(u), "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return NormalizeSKU(trimmed)
}

// BuildIndex keeps the URLs containing marker and keys them by SKU.
// When two URLs yield the same SKU the later one wins.
func BuildIndex(urls []string, marker string) Index {
	idx := make(Index)
	for _, u := range urls {
		if !strings.Contains(u, marker) {
			continue
		}
		sku := SKUFromURL(u)
		if sku == "" {
			continue
		}
		idx[sku] = u
	}
	return idx
}

// Lookup normalizes sku and returns its product URL.
func (idx Index) Lookup(sku string) (string, bool) {
	u, ok := idx[NormalizeSKU(sku)]
	return u, ok
}

// Len returns the number of SKUs in the index.
func (idx Index) Len() int {
	return len(idx)
}
