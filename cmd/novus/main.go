package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/novusamericanus/novus/internal/collect"
	"github.com/novusamericanus/novus/internal/config"
	"github.com/novusamericanus/novus/internal/database"
	"github.com/novusamericanus/novus/internal/essays"
	"github.com/novusamericanus/novus/internal/extract"
	"github.com/novusamericanus/novus/internal/search"
	"github.com/novusamericanus/novus/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "novus",
	Short:   "Archive and organize research for essays",
	Long:    "Novus archives web articles into a local store, extracts readable content, and organizes essay drafts as file trees.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(urlsCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(essayCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("novus", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/novus/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the reader endpoint, data locations, and feeds.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show archive status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Archive: %s\n\n", db.Path())
		fmt.Printf("Articles archived: %d\n", stats.TotalArticles)
		fmt.Printf("Essays with articles: %d\n", stats.Essays)

		summaries, err := db.EssaySummaries()
		if err != nil {
			return err
		}
		if len(summaries) > 0 {
			fmt.Println("\nPer essay:")
			for _, s := range summaries {
				fmt.Printf("  %s: %d (last %s)\n", s.Slug, s.ArticleCount, s.LatestArchived)
			}
		}
		return nil
	},
}

// --- archive command ---

var (
	archiveEssay      string
	archiveQuery      string
	archiveSourceDate string
	archiveLocal      bool
	archiveNoExtract  bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive [url]",
	Short: "Extract a URL's content and archive it for an essay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if !extract.ValidateURL(target) {
			return fmt.Errorf("invalid URL: %q (must start with http:// or https://)", target)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fields := database.ArticleFields{}
		if archiveQuery != "" {
			fields.Query = &archiveQuery
		}
		if archiveSourceDate != "" {
			fields.SourceDate = &archiveSourceDate
		}

		if !archiveNoExtract {
			result := extractContent(target)
			if !result.Success {
				fmt.Printf("Extraction failed: %s\n", result.Error)
				fmt.Println("Archiving URL without content.")
			} else {
				fields.Title = &result.Title
				fields.Content = &result.Content
				if result.Raw != nil {
					if raw, err := json.Marshal(result.Raw); err == nil {
						meta := string(raw)
						fields.Metadata = &meta
					}
				}
			}
		}

		outcome, err := db.ArchiveArticle(target, archiveEssay, fields)
		if err != nil {
			return fmt.Errorf("archiving article: %w", err)
		}

		if outcome.Created {
			fmt.Printf("Archived [%d] %s\n", outcome.ID, target)
		} else {
			fmt.Printf("Already archived [%d] %s\n", outcome.ID, target)
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVarP(&archiveEssay, "essay", "e", "", "Essay slug to file the article under (required)")
	archiveCmd.Flags().StringVarP(&archiveQuery, "query", "q", "", "Search query that produced this URL")
	archiveCmd.Flags().StringVar(&archiveSourceDate, "source-date", "", "Publication date of the source")
	archiveCmd.Flags().BoolVar(&archiveLocal, "local", false, "Fetch and extract locally instead of using the reader endpoint")
	archiveCmd.Flags().BoolVar(&archiveNoExtract, "no-extract", false, "Archive the URL without fetching content")
	archiveCmd.MarkFlagRequired("essay")
}

func extractContent(target string) extract.Result {
	timeout := time.Duration(cfg.Reader.TimeoutSeconds) * time.Second
	if archiveLocal {
		return extract.NewLocalExtractor(timeout).Extract(target)
	}
	return extract.NewClient(cfg.Reader.BaseURL, timeout).Extract(target)
}

// --- show command ---

var showCmd = &cobra.Command{
	Use:   "show [url]",
	Short: "Show the archived record for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		article, err := db.GetArticleByURL(args[0])
		if err != nil {
			return err
		}
		if article == nil {
			fmt.Printf("Not archived: %s\n", args[0])
			return nil
		}

		fmt.Printf("[%d] %s\n", article.ID, article.URL)
		if article.Title != nil {
			fmt.Printf("Title: %s\n", *article.Title)
		}
		fmt.Printf("Essay: %s\n", article.EssaySlug)
		fmt.Printf("Archived: %s\n", article.ArchivedAt)
		if article.SourceDate != nil {
			fmt.Printf("Source date: %s\n", *article.SourceDate)
		}
		if article.Query != nil {
			fmt.Printf("Query: %s\n", *article.Query)
		}
		if article.Content != nil {
			fmt.Printf("Content: %d bytes\n", len(*article.Content))
		}
		return nil
	},
}

// --- list command ---

var listCmd = &cobra.Command{
	Use:   "list [essay]",
	Short: "List archived articles for an essay, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		slug := args[0]
		articles, err := db.GetArticlesForEssay(slug)
		if err != nil {
			return err
		}

		if len(articles) == 0 {
			fmt.Printf("No articles archived for %s\n", slug)
			return nil
		}

		fmt.Printf("%d article(s) for %s:\n\n", len(articles), slug)
		for _, a := range articles {
			title := a.URL
			if a.Title != nil && *a.Title != "" {
				title = *a.Title
			}
			fmt.Printf("  [%d] %s\n", a.ID, title)
			fmt.Printf("        %s (archived %s)\n", a.URL, a.ArchivedAt)
		}
		return nil
	},
}

// --- urls command ---

var urlsCmd = &cobra.Command{
	Use:   "urls [results.json]",
	Short: "Print the URLs from a saved search-results file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := search.LoadResults(args[0])
		if err != nil {
			return err
		}
		for _, u := range search.URLs(results) {
			fmt.Println(u)
		}
		return nil
	},
}

// --- collect command ---

var collectEssay string

var collectCmd = &cobra.Command{
	Use:   "collect [feed-url]",
	Short: "Archive article URLs from an RSS/Atom feed",
	Long:  "Collect parses the given feed (or all configured feeds when no URL is given) and archives each entry under the essay slug.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var feeds []string
		if len(args) == 1 {
			feeds = []string{args[0]}
		} else {
			for _, f := range cfg.Feeds {
				feeds = append(feeds, f.URL)
			}
		}
		if len(feeds) == 0 {
			return fmt.Errorf("no feed URL given and no feeds configured")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		collector := collect.NewFeedCollector(db)
		total := collect.Result{}
		for _, feedURL := range feeds {
			result, err := collector.Collect(feedURL, collectEssay)
			if err != nil {
				fmt.Printf("Feed failed: %v\n", err)
				continue
			}
			total.Found += result.Found
			total.Archived += result.Archived
			total.Duplicates += result.Duplicates
		}

		fmt.Println("Collection complete:")
		fmt.Printf("  Found: %d\n", total.Found)
		fmt.Printf("  Archived: %d\n", total.Archived)
		fmt.Printf("  Duplicates skipped: %d\n", total.Duplicates)
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVarP(&collectEssay, "essay", "e", "", "Essay slug to file collected articles under (required)")
	collectCmd.MarkFlagRequired("essay")
}

// --- essay commands ---

var essayCmd = &cobra.Command{
	Use:   "essay",
	Short: "Manage essay file trees",
}

var essayNewTitle string

var essayNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create an essay directory with a metadata file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := essayManager()
		slug := essays.Slugify(args[0])
		if slug == "" {
			return fmt.Errorf("name %q produces an empty slug", args[0])
		}

		title := essayNewTitle
		if title == "" {
			title = args[0]
		}

		createdAt := time.Now().UTC().Format("2006-01-02")
		path, err := mgr.CreateMetadata(slug, title, createdAt)
		if err != nil {
			return err
		}
		fmt.Printf("Created essay %s\n", slug)
		fmt.Printf("Metadata: %s\n", path)
		return nil
	},
}

var essayOutlineCmd = &cobra.Command{
	Use:   "outline [essay] [file]",
	Short: "Show an essay's outline, or save one from a file ('-' for stdin)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := essayManager()
		slug := args[0]

		if len(args) == 1 {
			outline, ok, err := mgr.Outline(slug)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("No outline for %s\n", slug)
				return nil
			}
			fmt.Print(outline)
			return nil
		}

		content, err := readInput(args[1])
		if err != nil {
			return err
		}
		path, err := mgr.SaveOutline(slug, content)
		if err != nil {
			return err
		}
		fmt.Printf("Saved outline: %s\n", path)
		return nil
	},
}

var essaySectionCmd = &cobra.Command{
	Use:   "section [essay] [name] [file]",
	Short: "Show a section, or save one from a file ('-' for stdin)",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := essayManager()
		slug, name := args[0], args[1]

		if len(args) == 2 {
			section, ok, err := mgr.Section(slug, name)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("No section %q for %s\n", name, slug)
				return nil
			}
			fmt.Print(section)
			return nil
		}

		content, err := readInput(args[2])
		if err != nil {
			return err
		}
		path, err := mgr.SaveSection(slug, name, content)
		if err != nil {
			return err
		}
		fmt.Printf("Saved section: %s\n", path)
		return nil
	},
}

var essaySectionsCmd = &cobra.Command{
	Use:   "sections [essay]",
	Short: "List an essay's sections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := essayManager()
		sections, err := mgr.ListSections(args[0])
		if err != nil {
			return err
		}
		if len(sections) == 0 {
			fmt.Printf("No sections for %s\n", args[0])
			return nil
		}
		for _, s := range sections {
			fmt.Println(s)
		}
		return nil
	},
}

func init() {
	essayNewCmd.Flags().StringVarP(&essayNewTitle, "title", "t", "", "Essay title for the metadata file (defaults to the name)")
	essayCmd.AddCommand(essayNewCmd)
	essayCmd.AddCommand(essayOutlineCmd)
	essayCmd.AddCommand(essaySectionCmd)
	essayCmd.AddCommand(essaySectionsCmd)
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, essayManager(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- helpers ---

func openDB() (*database.DB, error) {
	dbPath := filepath.Join(cfg.GetDataDir(), "knowledge", "articles.db")
	return database.Open(dbPath)
}

func essayManager() *essays.Manager {
	return essays.NewManager(cfg.GetEssaysDir())
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
