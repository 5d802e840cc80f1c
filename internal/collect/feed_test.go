package collect

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/novusamericanus/novus/internal/database"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
    </item>
    <item>
      <title>No Link Entry</title>
    </item>
  </channel>
</rss>`

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCollectFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	db := openTestDB(t)
	collector := NewFeedCollector(db)

	result, err := collector.Collect(srv.URL, "feed-essay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Found != 2 {
		t.Errorf("expected 2 found (entry without link skipped), got %d", result.Found)
	}
	if result.Archived != 2 {
		t.Errorf("expected 2 archived, got %d", result.Archived)
	}
	if result.Duplicates != 0 {
		t.Errorf("expected 0 duplicates, got %d", result.Duplicates)
	}

	article, err := db.GetArticleByURL("https://example.com/first")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article == nil {
		t.Fatal("expected first entry archived")
	}
	if article.Title == nil || *article.Title != "First Post" {
		t.Error("expected feed title on archived article")
	}
	if article.SourceDate == nil || *article.SourceDate != "2026-08-24" {
		t.Error("expected published date on archived article")
	}
}

func TestCollectFeedDuplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	db := openTestDB(t)
	collector := NewFeedCollector(db)

	if _, err := collector.Collect(srv.URL, "feed-essay"); err != nil {
		t.Fatalf("first collect: %v", err)
	}
	result, err := collector.Collect(srv.URL, "feed-essay")
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}

	if result.Archived != 0 {
		t.Errorf("expected 0 newly archived on re-collect, got %d", result.Archived)
	}
	if result.Duplicates != 2 {
		t.Errorf("expected 2 duplicates, got %d", result.Duplicates)
	}

	count, _ := db.CountArticlesForEssay("feed-essay")
	if count != 2 {
		t.Errorf("expected 2 stored articles after re-collect, got %d", count)
	}
}

func TestCollectBadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	db := openTestDB(t)
	if _, err := NewFeedCollector(db).Collect(srv.URL, "feed-essay"); err == nil {
		t.Error("expected error for unparseable feed")
	}
}
