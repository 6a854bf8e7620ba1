package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/skulookup/lookup"
	"github.com/use-agent/skulookup/models"
)

// Templates is installed on the router with SetHTMLTemplate.
var Templates = template.Must(template.New("lookup.html").Parse(lookupPage))

// page is the data rendered by lookup.html.
type page struct {
	SKU     string
	Mode    string
	MaxLen  int
	Product *models.ProductRecord
	MSRP    *models.MSRPResult
	Error   string
}

// Home returns a handler for GET /, rendering the empty form.
func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "lookup.html", page{Mode: "product", MaxLen: models.MaxSKULength})
	}
}

// LookupPage returns a handler for GET /lookup?sku=&mode=.
//
// mode=msrp renders the MSRP banner; anything else renders the product
// fields. Failures render the form again with an error banner.
func LookupPage(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("sku")

		p := page{SKU: raw, Mode: c.DefaultQuery("mode", "product"), MaxLen: models.MaxSKULength}
		if sku, err := lookup.NormalizeSKU(raw); err == nil {
			p.SKU = sku
		}
		ctx := c.Request.Context()

		var err error
		if p.Mode == "msrp" {
			p.MSRP, err = svc.LookupMSRP(ctx, raw)
		} else {
			p.Mode = "product"
			p.Product, err = svc.Lookup(ctx, raw)
		}
		if err != nil {
			le := asLookupError(err)
			p.Error = userMessage(le)
			c.HTML(mapErrorToStatus(le), "lookup.html", p)
			return
		}

		c.HTML(http.StatusOK, "lookup.html", p)
	}
}

// userMessage is the banner text shown for a failed lookup.
func userMessage(e *models.LookupError) string {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return "Please enter a SKU of at most 30 characters."
	case models.ErrCodeSKUNotFound:
		return "SKU not found."
	case models.ErrCodeIndexUnavailable, models.ErrCodeIndexParse:
		return "The product index could not be loaded. Please try again later."
	case models.ErrCodePageFetch, models.ErrCodeTimeout:
		return "Failed to scrape the product page."
	default:
		return "Something went wrong."
	}
}

const lookupPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SKU Lookup</title>
<style>
body { font-family: sans-serif; max-width: 42rem; margin: 2rem auto; }
.error { background: #fde2e1; padding: .75rem; }
.success { background: #e3f6e5; padding: .75rem; }
th { text-align: left; padding-right: 1rem; }
img { max-width: 12rem; }
</style>
</head>
<body>
<h1>Frigidaire SKU Lookup</h1>
<form action="/lookup" method="get">
  <input type="text" name="sku" value="{{.SKU}}" maxlength="{{.MaxLen}}" placeholder="e.g. FGID2479SF" required>
  <select name="mode">
    <option value="product"{{if eq .Mode "product"}} selected{{end}}>Product details</option>
    <option value="msrp"{{if eq .Mode "msrp"}} selected{{end}}>MSRP only</option>
  </select>
  <button type="submit">Look up</button>
</form>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{with .Product}}
<table>
  {{range .Fields}}<tr><th>{{.Label}}</th><td>
    {{- if eq .Label "Image URL"}}{{if ne .Value "N/A"}}<img src="{{.Value}}" alt="product image">{{else}}N/A{{end}}
    {{- else if eq .Label "URL"}}<a href="{{.Value}}">{{.Value}}</a>
    {{- else}}{{.Value}}{{end -}}
  </td></tr>
  {{end}}
</table>
{{end}}
{{with .MSRP}}
{{if .Found}}<p class="success">MSRP: {{.MSRP}} <a href="{{.URL}}">View product</a></p>
{{else}}<p class="error">{{.MSRP}} <a href="{{.URL}}">View product</a></p>{{end}}
{{end}}
</body>
</html>
`
