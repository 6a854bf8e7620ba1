package models

import "time"

// ProductResponse is the response for GET /api/v1/products/:sku.
type ProductResponse struct {
	// Success indicates whether the lookup completed without errors.
	Success bool `json:"success"`

	// SKU is the normalized identifier that was looked up.
	SKU string `json:"sku"`

	// Product is populated only when Success is true.
	Product *ProductRecord `json:"product,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// MSRPResponse is the response for the MSRP endpoints.
type MSRPResponse struct {
	Success bool         `json:"success"`
	SKU     string       `json:"sku,omitempty"`
	MSRP    *MSRPResult  `json:"msrp,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SpecResponse is the response for GET /api/v1/products/:sku/spec.
type SpecResponse struct {
	Success bool         `json:"success"`
	SKU     string       `json:"sku"`
	Spec    *SpecSheet   `json:"spec,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// IndexMs is the time spent obtaining the SKU index (near zero on a cache hit).
	IndexMs int64 `json:"index_ms"`

	// FetchMs is the time spent fetching and parsing the product page.
	FetchMs int64 `json:"fetch_ms"`
}

// IndexStatus describes the cached SKU index.
type IndexStatus struct {
	// Entries is the number of SKUs in the cached index.
	Entries int `json:"entries"`

	// RefreshedAt is when the cached index was built; zero if never built.
	RefreshedAt time.Time `json:"refreshed_at"`

	// ExpiresAt is when the cached index will next be rebuilt.
	ExpiresAt time.Time `json:"expires_at"`

	// Stale is true when the next lookup will trigger a rebuild.
	Stale bool `json:"stale"`
}

// IndexResponse is the response for the /api/v1/index endpoints.
type IndexResponse struct {
	Success bool         `json:"success"`
	Index   IndexStatus  `json:"index"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string      `json:"status"` // "healthy" or "degraded"
	Uptime  string      `json:"uptime"`
	Index   IndexStatus `json:"index"`
	Engines []string    `json:"engines"`
	Version string      `json:"version"`
}

// ErrorResponse is written by middleware that rejects a request before it
// reaches a handler.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
