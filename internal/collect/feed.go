// Package collect archives article URLs pulled from RSS/Atom feeds.
package collect

import (
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/novusamericanus/novus/internal/database"
)

const maxPerFeed = 50

// Result holds the results of a feed collection run.
type Result struct {
	Found      int
	Archived   int
	Duplicates int
}

// FeedCollector parses feeds and archives their entries for an essay.
type FeedCollector struct {
	db     *database.DB
	parser *gofeed.Parser
}

// NewFeedCollector creates a feed collector backed by the archive.
func NewFeedCollector(db *database.DB) *FeedCollector {
	return &FeedCollector{db: db, parser: gofeed.NewParser()}
}

// Collect parses the feed and archives each entry URL under the essay
// slug. Entries already archived (by URL, regardless of essay) count as
// duplicates and are left untouched.
func (c *FeedCollector) Collect(feedURL, essaySlug string) (*Result, error) {
	feed, err := c.parser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	r := &Result{}
	for _, item := range feed.Items {
		if r.Found >= maxPerFeed {
			break
		}

		entryURL := item.Link
		if entryURL == "" {
			entryURL = item.GUID
		}
		if entryURL == "" {
			continue
		}
		r.Found++

		fields := database.ArticleFields{}
		if title := strings.TrimSpace(item.Title); title != "" {
			fields.Title = &title
		}
		if item.PublishedParsed != nil {
			date := item.PublishedParsed.Format("2006-01-02")
			fields.SourceDate = &date
		}

		outcome, err := c.db.ArchiveArticle(entryURL, essaySlug, fields)
		if err != nil {
			return nil, fmt.Errorf("archiving %s: %w", entryURL, err)
		}
		if outcome.Created {
			r.Archived++
		} else {
			r.Duplicates++
		}
	}

	log.Printf("Feed collection complete: %d found, %d archived, %d duplicates", r.Found, r.Archived, r.Duplicates)
	return r, nil
}
