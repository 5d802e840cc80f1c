// Package extract converts URLs into normalized title/content pairs via
// the Jina Reader endpoint, with a direct readability fallback.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultReaderBase is the public Jina Reader endpoint.
const DefaultReaderBase = "https://r.jina.ai/"

// UntitledPlaceholder is used when no title can be derived from content.
const UntitledPlaceholder = "Untitled"

const userAgent = "NovusAmericanus/0.1.0"

// Result holds the outcome of a single extraction attempt. Extraction
// failures are normal result values: Success=false with Error set,
// never a returned error.
type Result struct {
	Success bool
	URL     string
	Title   string
	Content string
	Raw     map[string]any // full parsed payload for JSON responses
	Error   string
}

// Client extracts article content through a reader endpoint.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a reader client. An empty base falls back to the
// public endpoint; a zero timeout defaults to 30 seconds.
func NewClient(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultReaderBase
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches the target URL through the reader endpoint. The reader
// is asked for JSON; on a plain-text (markdown) response the body is
// taken verbatim as content and the title derived from its first H1.
func (c *Client) Extract(target string) Result {
	req, err := http.NewRequest("GET", c.base+target, nil)
	if err != nil {
		return Result{URL: target, Error: fmt.Sprintf("unexpected error: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
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

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			return Result{URL: target, Error: fmt.Sprintf("unexpected error: %v", err)}
		}
		return Result{
			Success: true,
			URL:     target,
			Title:   nestedString(payload, "data", "title"),
			Content: nestedString(payload, "data", "content"),
			Raw:     payload,
		}
	}

	content := string(body)
	return Result{
		Success: true,
		URL:     target,
		Title:   TitleFromMarkdown(content),
		Content: content,
	}
}

// transportError maps a transport-level fault to a human-readable
// message categorized by cause.
func transportError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "request timed out"
		}
		return fmt.Sprintf("connection error: %v", urlErr.Err)
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return "request timed out"
	}
	return fmt.Sprintf("unexpected error: %v", err)
}

// TitleFromMarkdown returns the text of the first level-1 heading line,
// or the Untitled placeholder when the content has none.
func TitleFromMarkdown(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return UntitledPlaceholder
}

// ValidateURL reports whether the trimmed input looks like an archivable
// URL. Purely syntactic; no network access.
func ValidateURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// nestedString digs a string out of nested JSON maps, defaulting to "".
func nestedString(m map[string]any, keys ...string) string {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[k]
	}
	s, _ := cur.(string)
	return s
}
