package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL  = flag.String("api-url", "http://localhost:8080", "skulookup API base URL")
	apiKey  = flag.String("api-key", "", "API key for authenticated requests")
	runs    = flag.Int("runs", 3, "Number of lookups per SKU")
	skuList = flag.String("skus", "FGID2479SF,FRSS2623AS,GCRE3060AF", "Comma-separated SKUs to look up")
	refresh = flag.Bool("refresh", false, "Force an index rebuild before timing lookups")
	output  = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// --- Response types (mirrors models package) ---

type productResponse struct {
	Success bool         `json:"success"`
	Product *product     `json:"product"`
	Timing  timingInfo   `json:"timing"`
	Error   *errorDetail `json:"error,omitempty"`
}

type product struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

type timingInfo struct {
	TotalMs int64 `json:"total_ms"`
	IndexMs int64 `json:"index_ms"`
	FetchMs int64 `json:"fetch_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run       int    `json:"run"`
	TotalMs   int64  `json:"total_ms"`
	IndexMs   int64  `json:"index_ms"`
	FetchMs   int64  `json:"fetch_ms"`
	RoundTrip int64  `json:"round_trip_ms"`
	HasTitle  bool   `json:"has_title"`
	HasPrice  bool   `json:"has_price"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
}

type skuAverages struct {
	TotalMs float64 `json:"total_ms"`
	IndexMs float64 `json:"index_ms"`
	FetchMs float64 `json:"fetch_ms"`
}

type skuResult struct {
	SKU      string       `json:"sku"`
	Runs     []runResult  `json:"runs"`
	Averages *skuAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerSKU int         `json:"runs_per_sku"`
	Results    []skuResult `json:"results"`
}

var client = &http.Client{Timeout: 90 * time.Second}

func main() {
	flag.Parse()

	fmt.Println("=== skulookup Benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/SKU:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	if *refresh {
		fmt.Print("Forcing index rebuild ... ")
		if err := refreshIndex(); err != nil {
			fmt.Printf("FAILED: %v\n", err)
		} else {
			fmt.Println("OK")
		}
		fmt.Println()
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerSKU: *runs,
	}

	for _, sku := range strings.Split(*skuList, ",") {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		fmt.Printf("Looking up %s ...\n", sku)
		sr := skuResult{SKU: sku}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := lookupSKU(sku, i)
			if rr.Success {
				fmt.Printf("OK  %dms (index %dms, page %dms)\n", rr.TotalMs, rr.IndexMs, rr.FetchMs)
			} else {
				fmt.Printf("FAILED: %s\n", rr.ErrorCode)
			}
			sr.Runs = append(sr.Runs, rr)
		}

		sr.Averages = computeAverages(sr.Runs)
		report.Results = append(report.Results, sr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func newRequest(method, path string) (*http.Request, error) {
	req, err := http.NewRequest(method, *apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}
	return req, nil
}

func refreshIndex() error {
	req, err := newRequest(http.MethodPost, "/api/v1/index/refresh")
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

func lookupSKU(sku string, run int) runResult {
	rr := runResult{Run: run}

	req, err := newRequest(http.MethodGet, "/api/v1/products/"+url.PathEscape(sku))
	if err != nil {
		rr.ErrorCode = err.Error()
		return rr
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.ErrorCode = err.Error()
		return rr
	}
	defer resp.Body.Close()

	var pr productResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		rr.ErrorCode = fmt.Sprintf("decode error: %v", err)
		return rr
	}
	rr.RoundTrip = time.Since(start).Milliseconds()

	rr.Success = pr.Success
	rr.TotalMs = pr.Timing.TotalMs
	rr.IndexMs = pr.Timing.IndexMs
	rr.FetchMs = pr.Timing.FetchMs
	if pr.Product != nil {
		rr.HasTitle = pr.Product.Title != "N/A"
		rr.HasPrice = pr.Product.Price != "N/A"
	}
	if pr.Error != nil {
		rr.ErrorCode = pr.Error.Code
	}
	return rr
}

func computeAverages(runs []runResult) *skuAverages {
	var n float64
	var avg skuAverages
	for _, r := range runs {
		if !r.Success {
			continue
		}
		n++
		avg.TotalMs += float64(r.TotalMs)
		avg.IndexMs += float64(r.IndexMs)
		avg.FetchMs += float64(r.FetchMs)
	}
	if n == 0 {
		return nil
	}
	avg.TotalMs /= n
	avg.IndexMs /= n
	avg.FetchMs /= n
	return &avg
}

func printTable(results []skuResult) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SKU\tAvg Total\tAvg Index\tAvg Page\tFirst Run\n")
	fmt.Fprintf(w, "───\t─────────\t─────────\t────────\t─────────\n")

	for _, r := range results {
		if r.Averages == nil {
			code := "-"
			if len(r.Runs) > 0 {
				code = r.Runs[0].ErrorCode
			}
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t%s\n", r.SKU, code)
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%dms\n",
			r.SKU,
			int64(r.Averages.TotalMs),
			int64(r.Averages.IndexMs),
			int64(r.Averages.FetchMs),
			r.Runs[0].TotalMs,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
