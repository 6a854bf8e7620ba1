package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/skulookup/models"
)

// Rule pulls one field out of a product page: the first element matching
// Selector, read as trimmed text or, when Attr is set, as that attribute.
type Rule struct {
	Field    string
	Selector string
	Attr     string

	matcher cascadia.Selector
	set     func(r *models.ProductRecord, v string)
}

// mustRule compiles the selector once; the rule set is fixed at build time.
func mustRule(field, selector, attr string, set func(*models.ProductRecord, string)) Rule {
	return Rule{
		Field:    field,
		Selector: selector,
		Attr:     attr,
		matcher:  cascadia.MustCompile(selector),
		set:      set,
	}
}

// ProductRules are applied in order to build a ProductRecord.
var ProductRules = []Rule{
	mustRule("Title", "h1", "", func(r *models.ProductRecord, v string) { r.Title = v }),
	mustRule("Price", ".price-value", "", func(r *models.ProductRecord, v string) { r.Price = v }),
	mustRule("Original Price", ".price-strike-through", "", func(r *models.ProductRecord, v string) { r.OriginalPrice = v }),
	mustRule("Rating", ".bvseo-ratingValue", "", func(r *models.ProductRecord, v string) { r.Rating = v }),
	mustRule("Image URL", "img.primary-image", "src", func(r *models.ProductRecord, v string) { r.ImageURL = v }),
}

// MSRPRule reads the struck-through list price.
var MSRPRule = mustRule("MSRP", "span.Utility-TextStrike-Through-Price", "", nil)

// Apply returns the rule's value in doc and whether anything matched.
func (r Rule) Apply(doc *goquery.Document) (string, bool) {
	sel := doc.FindMatcher(r.matcher).First()
	if sel.Length() == 0 {
		return "", false
	}
	if r.Attr != "" {
		return sel.Attr(r.Attr)
	}
	return strings.TrimSpace(sel.Text()), true
}
