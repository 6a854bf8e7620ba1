package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the skulookup API error detail.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// productResponse mirrors the skulookup product response.
type productResponse struct {
	Success bool   `json:"success"`
	SKU     string `json:"sku"`
	Product *struct {
		Title         string `json:"title"`
		Price         string `json:"price"`
		OriginalPrice string `json:"original_price"`
		Rating        string `json:"rating"`
		ImageURL      string `json:"image_url"`
		URL           string `json:"url"`
	} `json:"product"`
	Error *apiError `json:"error"`
}

// msrpResponse mirrors the skulookup MSRP response.
type msrpResponse struct {
	Success bool   `json:"success"`
	SKU     string `json:"sku"`
	MSRP    *struct {
		MSRP string `json:"msrp"`
		URL  string `json:"url"`
	} `json:"msrp"`
	Error *apiError `json:"error"`
}

// specResponse mirrors the skulookup spec sheet response.
type specResponse struct {
	Success bool   `json:"success"`
	SKU     string `json:"sku"`
	Spec    *struct {
		Title    string `json:"title"`
		Markdown string `json:"markdown"`
		URL      string `json:"url"`
	} `json:"spec"`
	Error *apiError `json:"error"`
}

// apiClient calls the skulookup HTTP API.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func main() {
	apiURL := os.Getenv("SKULOOKUP_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	api := &apiClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		apiKey:  os.Getenv("SKULOOKUP_API_KEY"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}

	s := server.NewMCPServer(
		"skulookup",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	lookupTool := mcp.NewTool("lookup_sku",
		mcp.WithDescription("Look up a Frigidaire product by SKU and return its title, price, original price, rating, image and product page URL. Missing fields are reported as N/A."),
		mcp.WithString("sku",
			mcp.Required(),
			mcp.Description("Product SKU, case-insensitive, at most 30 characters (e.g. FGID2479SF)"),
		),
	)
	s.AddTool(lookupTool, handleLookupSKU(api))

	msrpTool := mcp.NewTool("lookup_msrp",
		mcp.WithDescription("Return the manufacturer's suggested retail price (MSRP) for a Frigidaire product, by SKU or by product page URL."),
		mcp.WithString("sku",
			mcp.Description("Product SKU; ignored when url is given"),
		),
		mcp.WithString("url",
			mcp.Description("Product page URL to read the MSRP from"),
		),
	)
	s.AddTool(msrpTool, handleLookupMSRP(api))

	specTool := mcp.NewTool("product_spec",
		mcp.WithDescription("Return the main content of a Frigidaire product page as Markdown, including specification tables."),
		mcp.WithString("sku",
			mcp.Required(),
			mcp.Description("Product SKU, case-insensitive"),
		),
	)
	s.AddTool(specTool, handleProductSpec(api))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// do sends a request to the API and decodes the JSON body into out.
// Error responses still carry a JSON body, so the status code is not checked.
func (a *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.apiKey != "" {
		req.Header.Set("X-API-Key", a.apiKey)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}

func productPath(sku, suffix string) string {
	return "/api/v1/products/" + url.PathEscape(strings.TrimSpace(sku)) + suffix
}

func toolError(e *apiError, fallback string) *mcp.CallToolResult {
	if e == nil {
		return mcp.NewToolResultError(fallback)
	}
	return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", e.Code, e.Message))
}

func handleLookupSKU(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sku, err := request.RequireString("sku")
		if err != nil {
			return mcp.NewToolResultError("sku is required"), nil
		}

		var resp productResponse
		if err := api.do(ctx, http.MethodGet, productPath(sku, ""), nil, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Product == nil {
			return toolError(resp.Error, "lookup failed"), nil
		}

		p := resp.Product
		var b strings.Builder
		fmt.Fprintf(&b, "SKU: %s\n", resp.SKU)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Price: %s\n", p.Price)
		fmt.Fprintf(&b, "Original Price: %s\n", p.OriginalPrice)
		fmt.Fprintf(&b, "Rating: %s\n", p.Rating)
		fmt.Fprintf(&b, "Image URL: %s\n", p.ImageURL)
		fmt.Fprintf(&b, "URL: %s", p.URL)
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleLookupMSRP(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sku := request.GetString("sku", "")
		pageURL := request.GetString("url", "")

		var resp msrpResponse
		var err error
		switch {
		case pageURL != "":
			err = api.do(ctx, http.MethodPost, "/api/v1/msrp", map[string]string{"url": pageURL}, &resp)
		case strings.TrimSpace(sku) != "":
			err = api.do(ctx, http.MethodGet, productPath(sku, "/msrp"), nil, &resp)
		default:
			return mcp.NewToolResultError("either sku or url is required"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.MSRP == nil {
			return toolError(resp.Error, "MSRP lookup failed"), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("MSRP: %s\nURL: %s", resp.MSRP.MSRP, resp.MSRP.URL)), nil
	}
}

func handleProductSpec(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sku, err := request.RequireString("sku")
		if err != nil {
			return mcp.NewToolResultError("sku is required"), nil
		}

		var resp specResponse
		if err := api.do(ctx, http.MethodGet, productPath(sku, "/spec"), nil, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !resp.Success || resp.Spec == nil {
			return toolError(resp.Error, "spec lookup failed"), nil
		}

		result := fmt.Sprintf("Title: %s\nSource: %s\n\n%s", resp.Spec.Title, resp.Spec.URL, resp.Spec.Markdown)
		return mcp.NewToolResultText(result), nil
	}
}
