package models

// MaxSKULength bounds the free-text SKU input.
const MaxSKULength = 30

// MSRPRequest is the payload for POST /api/v1/msrp.
type MSRPRequest struct {
	// URL is the product page to read the MSRP from. Required.
	URL string `json:"url" binding:"required,url"`
}
