package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/skulookup/lookup"
	"github.com/use-agent/skulookup/models"
)

// GetProduct returns a handler for GET /api/v1/products/:sku.
//
// Flow: normalize SKU → cached index → product page → ProductRecord.
// Missing fields come back as "N/A"; a failed page fetch is an error,
// never a partial record.
func GetProduct(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := c.Param("sku")

		record, timing, err := svc.LookupTimed(c.Request.Context(), sku)
		if err != nil {
			slog.Info("product lookup failed", "sku", sku, "error", err)
			respondError(c, err, func(d *models.ErrorDetail) any {
				return models.ProductResponse{SKU: normalized(sku), Timing: timing, Error: d}
			})
			return
		}

		c.JSON(http.StatusOK, models.ProductResponse{
			Success: true,
			SKU:     normalized(sku),
			Product: record,
			Timing:  timing,
		})
	}
}

// GetMSRP returns a handler for GET /api/v1/products/:sku/msrp.
//
// A page that fails to load is not an HTTP error here: the MSRP field
// carries the "Failed to load page" sentinel instead.
func GetMSRP(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := c.Param("sku")

		result, err := svc.LookupMSRP(c.Request.Context(), sku)
		if err != nil {
			respondError(c, err, func(d *models.ErrorDetail) any {
				return models.MSRPResponse{SKU: normalized(sku), Error: d}
			})
			return
		}

		c.JSON(http.StatusOK, models.MSRPResponse{
			Success: true,
			SKU:     normalized(sku),
			MSRP:    result,
		})
	}
}

// PostMSRP returns a handler for POST /api/v1/msrp, reading the MSRP from
// a caller-supplied product page URL.
func PostMSRP(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MSRPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.MSRPResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		c.JSON(http.StatusOK, models.MSRPResponse{
			Success: true,
			MSRP:    svc.MSRPByURL(c.Request.Context(), req.URL),
		})
	}
}

// GetSpec returns a handler for GET /api/v1/products/:sku/spec.
func GetSpec(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sku := c.Param("sku")

		sheet, err := svc.SpecSheet(c.Request.Context(), sku)
		if err != nil {
			respondError(c, err, func(d *models.ErrorDetail) any {
				return models.SpecResponse{SKU: normalized(sku), Error: d}
			})
			return
		}

		c.JSON(http.StatusOK, models.SpecResponse{
			Success: true,
			SKU:     normalized(sku),
			Spec:    sheet,
		})
	}
}

// normalized echoes the lookup key for a raw SKU, or the raw input when it
// does not validate.
func normalized(raw string) string {
	if sku, err := lookup.NormalizeSKU(raw); err == nil {
		return sku
	}
	return raw
}
