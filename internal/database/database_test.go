package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func TestArchiveArticle(t *testing.T) {
	db := openTestDB(t)

	outcome, err := db.ArchiveArticle("https://example.com/test", "my-essay", ArticleFields{
		Title:   ptr("Test Article"),
		Content: ptr("Test content here"),
		Query:   ptr("test query"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Created {
		t.Error("expected Created=true on first archive")
	}
	if outcome.ID == 0 {
		t.Error("expected non-zero article ID")
	}

	article, err := db.GetArticleByURL("https://example.com/test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article == nil {
		t.Fatal("expected archived article")
	}
	if article.ArchivedAt == "" {
		t.Error("expected archived_at to be set")
	}
	if article.EssaySlug != "my-essay" {
		t.Errorf("expected essay slug 'my-essay', got %q", article.EssaySlug)
	}
}

func TestArchiveIdempotent(t *testing.T) {
	db := openTestDB(t)

	first, err := db.ArchiveArticle("https://example.com/dup", "essay-one", ArticleFields{
		Title:   ptr("First Title"),
		Content: ptr("First content"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := db.ArchiveArticle("https://example.com/dup", "essay-one", ArticleFields{
		Title:   ptr("Second Title"),
		Content: ptr("Second content"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Created {
		t.Error("expected Created=false on duplicate archive")
	}
	if second.ID != first.ID {
		t.Errorf("expected same ID %d, got %d", first.ID, second.ID)
	}

	// Stored fields must come from the first call only.
	article, _ := db.GetArticleByURL("https://example.com/dup")
	if article == nil {
		t.Fatal("expected archived article")
	}
	if article.Title == nil || *article.Title != "First Title" {
		t.Error("expected first call's title to survive the duplicate")
	}
	if article.Content == nil || *article.Content != "First content" {
		t.Error("expected first call's content to survive the duplicate")
	}
}

func TestArchiveUniqueAcrossEssays(t *testing.T) {
	db := openTestDB(t)

	first, _ := db.ArchiveArticle("https://example.com/shared", "essay-one", ArticleFields{})
	second, err := db.ArchiveArticle("https://example.com/shared", "essay-two", ArticleFields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Created {
		t.Error("expected duplicate across essays to be rejected")
	}
	if second.ID != first.ID {
		t.Errorf("expected ID %d, got %d", first.ID, second.ID)
	}

	article, _ := db.GetArticleByURL("https://example.com/shared")
	if article.EssaySlug != "essay-one" {
		t.Errorf("expected original essay slug to survive, got %q", article.EssaySlug)
	}

	countTwo, _ := db.CountArticlesForEssay("essay-two")
	if countTwo != 0 {
		t.Errorf("expected 0 articles for essay-two, got %d", countTwo)
	}
}

func TestGetArticlesForEssayOrdering(t *testing.T) {
	db := openTestDB(t)

	// Insert directly with controlled archive times.
	times := map[string]string{
		"https://a.com": "2026-08-01T10:00:00Z",
		"https://b.com": "2026-08-02T10:00:00Z",
		"https://c.com": "2026-08-03T10:00:00Z",
	}
	for url, at := range times {
		_, err := db.conn.Exec(
			"INSERT INTO articles (url, archived_at, essay_slug) VALUES (?, ?, ?)",
			url, at, "ordered-essay",
		)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	articles, err := db.GetArticlesForEssay("ordered-essay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	want := []string{"https://c.com", "https://b.com", "https://a.com"}
	for i, u := range want {
		if articles[i].URL != u {
			t.Errorf("position %d: expected %s, got %s", i, u, articles[i].URL)
		}
	}
}

func TestGetArticlesForEssayEmpty(t *testing.T) {
	db := openTestDB(t)

	articles, err := db.GetArticlesForEssay("nothing-here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected empty result, got %d articles", len(articles))
	}
}

func TestGetArticleByURLNotFound(t *testing.T) {
	db := openTestDB(t)

	article, err := db.GetArticleByURL("https://never-archived.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article != nil {
		t.Error("expected nil for unarchived URL")
	}
}

func TestCountMatchesList(t *testing.T) {
	db := openTestDB(t)

	urls := []string{"https://a.com/1", "https://a.com/2", "https://a.com/3"}
	for _, u := range urls {
		if _, err := db.ArchiveArticle(u, "counted-essay", ArticleFields{}); err != nil {
			t.Fatalf("archive %s: %v", u, err)
		}
	}
	// A duplicate must not change the count.
	db.ArchiveArticle(urls[0], "counted-essay", ArticleFields{})

	count, err := db.CountArticlesForEssay("counted-essay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	articles, _ := db.GetArticlesForEssay("counted-essay")
	if count != len(articles) {
		t.Errorf("count %d does not match list length %d", count, len(articles))
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestCountEmptyEssay(t *testing.T) {
	db := openTestDB(t)

	count, err := db.CountArticlesForEssay("empty-essay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0, got %d", count)
	}
}

func TestGetArticleByID(t *testing.T) {
	db := openTestDB(t)

	outcome, _ := db.ArchiveArticle("https://example.com/byid", "essay", ArticleFields{Title: ptr("By ID")})

	article, err := db.GetArticleByID(outcome.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article == nil {
		t.Fatal("expected article")
	}
	if article.Title == nil || *article.Title != "By ID" {
		t.Error("expected title 'By ID'")
	}

	missing, err := db.GetArticleByID(99999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing ID")
	}
}

func TestStatsAndSummaries(t *testing.T) {
	db := openTestDB(t)

	db.ArchiveArticle("https://a.com/1", "essay-one", ArticleFields{})
	db.ArchiveArticle("https://a.com/2", "essay-one", ArticleFields{})
	db.ArchiveArticle("https://b.com/1", "essay-two", ArticleFields{})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalArticles != 3 {
		t.Errorf("expected 3 total articles, got %d", stats.TotalArticles)
	}
	if stats.Essays != 2 {
		t.Errorf("expected 2 essays, got %d", stats.Essays)
	}

	summaries, err := db.EssaySummaries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	for _, s := range summaries {
		if s.Slug == "essay-one" && s.ArticleCount != 2 {
			t.Errorf("expected 2 articles for essay-one, got %d", s.ArticleCount)
		}
	}
}
