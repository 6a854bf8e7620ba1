package models

// Sentinels used in place of missing values.
const (
	NotAvailable      = "N/A"
	MSRPNotFound      = "MSRP not found"
	MSRPPageLoadError = "Failed to load page"
)

// ProductRecord is the set of displayed fields pulled from a product page.
// Fields whose selector matched nothing hold NotAvailable.
type ProductRecord struct {
	Title         string `json:"title"`
	Price         string `json:"price"`
	OriginalPrice string `json:"original_price"`
	Rating        string `json:"rating"`
	ImageURL      string `json:"image_url"`
	URL           string `json:"url"`
}

// Fields returns the record as an ordered list of label/value pairs,
// in the order they are displayed.
func (r *ProductRecord) Fields() []Field {
	return []Field{
		{Label: "Title", Value: r.Title},
		{Label: "Price", Value: r.Price},
		{Label: "Original Price", Value: r.OriginalPrice},
		{Label: "Rating", Value: r.Rating},
		{Label: "Image URL", Value: r.ImageURL},
		{Label: "URL", Value: r.URL},
	}
}

// Field is a single labelled value of a ProductRecord.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MSRPResult is the outcome of the MSRP-only extraction profile.
type MSRPResult struct {
	// MSRP is the extracted text, MSRPNotFound, or MSRPPageLoadError.
	MSRP string `json:"msrp"`
	URL  string `json:"url"`
}

// Found reports whether MSRP holds an extracted value rather than a sentinel.
func (m *MSRPResult) Found() bool {
	return m.MSRP != MSRPNotFound && m.MSRP != MSRPPageLoadError
}

// SpecSheet is the readable main content of a product page.
type SpecSheet struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt,omitempty"`
	Markdown string `json:"markdown"`
	URL      string `json:"url"`
}
