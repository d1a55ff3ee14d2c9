package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"pdf-exporter/internal/security"
)

type Scenario struct {
	TotalRequests int
	Concurrency   int
	Action        string
	Rows          int
	Description   string
}

type Result struct {
	Status   int
	Bytes    int64
	Duration time.Duration
	Error    error
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Server base URL")
	secret := flag.String("secret", os.Getenv("API_SECRET"), "API secret used to sign requests")
	model := flag.String("model", "Book", "Model to export")
	flag.Parse()

	scenarios := []Scenario{
		{TotalRequests: 50, Concurrency: 5, Action: "export_to_pdf_portrait", Rows: 20, Description: "Baseline (one page)"},
		{TotalRequests: 50, Concurrency: 20, Action: "export_to_pdf_landscape", Rows: 200, Description: "Concurrency above the export limit"},
		{TotalRequests: 20, Concurrency: 4, Action: "export_to_excel", Rows: 1000, Description: "Spreadsheet, large selection"},
	}

	for _, s := range scenarios {
		runScenario(*baseURL, *secret, *model, s)
	}
}

func runScenario(baseURL, secret, model string, s Scenario) {
	fmt.Printf("\n=======================================================\n")
	fmt.Printf("Scenario: %s\n", s.Description)
	fmt.Printf("Requests: %d | Concurrency: %d | Action: %s | Rows: %d\n", s.TotalRequests, s.Concurrency, s.Action, s.Rows)
	fmt.Printf("=======================================================\n")

	ids := make([]string, s.Rows)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	body, _ := json.Marshal(map[string][]string{"ids": ids})
	path := "/admin/" + model + "/actions/" + s.Action

	results := make(chan Result, s.TotalRequests)
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.Concurrency)

	start := time.Now()
	for i := 0; i < s.TotalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- executeRequest(baseURL+path, path, secret, body)
			if id%10 == 0 {
				fmt.Print(".")
			}
		}(i)
	}
	wg.Wait()
	close(results)
	total := time.Since(start)
	fmt.Println()

	var latencies []time.Duration
	var failures int
	var bytesOut int64
	statuses := map[int]int{}
	for res := range results {
		statuses[res.Status]++
		if res.Error != nil || res.Status != http.StatusOK {
			failures++
			continue
		}
		latencies = append(latencies, res.Duration)
		bytesOut += res.Bytes
	}
	slices.Sort(latencies)

	fmt.Printf("\nRESULTS:\n")
	fmt.Printf("Total Duration: %v\n", total)
	fmt.Printf("Throughput: %.2f req/sec\n", float64(s.TotalRequests)/total.Seconds())
	fmt.Printf("Success Rate: %.1f%%\n", float64(s.TotalRequests-failures)/float64(s.TotalRequests)*100)
	fmt.Printf("Status Codes: %v\n", statuses)
	if n := len(latencies); n > 0 {
		fmt.Printf("Latency (P50): %v\n", latencies[n/2])
		fmt.Printf("Latency (P95): %v\n", latencies[int(float64(n)*0.95)])
		fmt.Printf("Average Document Size: %d bytes\n", bytesOut/int64(n))
	}
}

func executeRequest(url, path, secret string, body []byte) Result {
	start := time.Now()

	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set("X-Timestamp", ts)
		req.Header.Set("X-Signature", security.Sign(secret, http.MethodPost, path, string(body), ts))
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Error: err}
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	return Result{Status: resp.StatusCode, Bytes: n, Duration: time.Since(start), Error: err}
}
