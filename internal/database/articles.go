package database

import (
	"database/sql"
	"fmt"
	"time"
)

const articleColumns = "id, url, title, content, source_date, archived_at, essay_slug, query, metadata"

// ArchiveArticle stores an article, deduplicated by URL. If the URL is
// already archived the existing record is left untouched (including its
// title and content) and its ID is returned with Created=false. The dedup
// relies on the UNIQUE constraint, so concurrent attempts from independent
// processes resolve to a single row.
func (db *DB) ArchiveArticle(url, essaySlug string, fields ArticleFields) (ArchiveOutcome, error) {
	archivedAt := time.Now().UTC().Format(time.RFC3339)

	result, err := db.conn.Exec(
		`INSERT INTO articles (url, title, content, source_date, archived_at, essay_slug, query, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`,
		url, fields.Title, fields.Content, fields.SourceDate, archivedAt, essaySlug, fields.Query, fields.Metadata,
	)
	if err != nil {
		return ArchiveOutcome{}, fmt.Errorf("inserting article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ArchiveOutcome{}, err
	}

	if affected > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return ArchiveOutcome{}, err
		}
		return ArchiveOutcome{ID: id, Created: true}, nil
	}

	// Duplicate URL: return the identity of the winning insert.
	var id int64
	if err := db.conn.QueryRow("SELECT id FROM articles WHERE url = ?", url).Scan(&id); err != nil {
		return ArchiveOutcome{}, fmt.Errorf("looking up existing article: %w", err)
	}
	return ArchiveOutcome{ID: id, Created: false}, nil
}

// GetArticlesForEssay returns all articles archived for an essay,
// most recently archived first.
func (db *DB) GetArticlesForEssay(essaySlug string) ([]Article, error) {
	rows, err := db.conn.Query(
		"SELECT "+articleColumns+" FROM articles WHERE essay_slug = ? ORDER BY archived_at DESC, id DESC",
		essaySlug,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticleByURL returns the archived article for a URL, or nil if the
// URL has not been archived.
func (db *DB) GetArticleByURL(url string) (*Article, error) {
	row := db.conn.QueryRow("SELECT "+articleColumns+" FROM articles WHERE url = ?", url)
	return scanArticle(row)
}

// GetArticleByID returns a single article by ID, or nil if absent.
func (db *DB) GetArticleByID(id int64) (*Article, error) {
	row := db.conn.QueryRow("SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	return scanArticle(row)
}

// CountArticlesForEssay counts archived articles for an essay.
func (db *DB) CountArticlesForEssay(essaySlug string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM articles WHERE essay_slug = ?", essaySlug,
	).Scan(&count)
	return count, err
}

// EssaySummaries returns per-essay archive counts, most recently
// active essay first.
func (db *DB) EssaySummaries() ([]EssaySummary, error) {
	rows, err := db.conn.Query(
		`SELECT essay_slug, COUNT(*), MAX(archived_at)
		FROM articles GROUP BY essay_slug ORDER BY MAX(archived_at) DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []EssaySummary
	for rows.Next() {
		var s EssaySummary
		if err := rows.Scan(&s.Slug, &s.ArticleCount, &s.LatestArchived); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetStats returns aggregate archive statistics.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&s.TotalArticles); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(DISTINCT essay_slug) FROM articles").Scan(&s.Essays); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.SourceDate,
			&a.ArchivedAt, &a.EssaySlug, &a.Query, &a.Metadata); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.SourceDate,
		&a.ArchivedAt, &a.EssaySlug, &a.Query, &a.Metadata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
