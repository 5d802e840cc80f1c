package extract

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// LocalExtractor fetches a page directly and extracts readable content
// without going through the reader endpoint. Used when the reader is
// unreachable or the caller prefers a local fetch.
type LocalExtractor struct {
	client *http.Client
}

// NewLocalExtractor creates a direct-fetch extractor.
func NewLocalExtractor(timeout time.Duration) *LocalExtractor {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &LocalExtractor{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Extract fetches the URL and runs readability over the response body.
// Shares the Result taxonomy with the reader client.
func (e *LocalExtractor) Extract(target string) Result {
	req, err := http.NewRequest("GET", target, nil)
	if err != nil {
		return Result{URL: target, Error: fmt.Sprintf("unexpected error: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{URL: target, Error: transportError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{URL: target, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{URL: target, Error: transportError(err)}
	}

	parsedURL, _ := url.Parse(target)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return Result{URL: target, Error: fmt.Sprintf("unexpected error: readability: %v", err)}
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = UntitledPlaceholder
	}

	return Result{
		Success: true,
		URL:     target,
		Title:   title,
		Content: strings.TrimSpace(article.TextContent),
	}
}
