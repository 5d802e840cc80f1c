// Package search handles saved web-search results: parsing result files
// and pulling out the URL list to feed into archival.
package search

import (
	"encoding/json"
	"fmt"
	"os"
)

// Result is a single web search result.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// URLs extracts the URLs from search results, preserving order and
// skipping results without one.
func URLs(results []Result) []string {
	var urls []string
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// LoadResults reads a JSON array of search results from a file.
func LoadResults(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing results file: %w", err)
	}
	return results, nil
}
