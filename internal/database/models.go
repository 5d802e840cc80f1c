package database

// Article represents an archived web article.
type Article struct {
	ID         int64
	URL        string
	Title      *string
	Content    *string
	SourceDate *string
	ArchivedAt string
	EssaySlug  string
	Query      *string
	Metadata   *string
}

// ArchiveOutcome reports the result of an archival attempt.
// Created is false when the URL was already archived, in which case
// ID identifies the existing record.
type ArchiveOutcome struct {
	ID      int64
	Created bool
}

// ArticleFields holds the optional caller-supplied columns of an article.
type ArticleFields struct {
	Title      *string
	Content    *string
	SourceDate *string
	Query      *string
	Metadata   *string
}

// EssaySummary aggregates archive counts per essay.
type EssaySummary struct {
	Slug           string
	ArticleCount   int
	LatestArchived string
}

// Stats contains aggregate archive statistics.
type Stats struct {
	TotalArticles int
	Essays        int
}
