package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl data and contact facts.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file shared by all crawled
// domains rather than one file per domain. This simplifies cross-domain
// queries (e.g. "which domains mention this email") and backup/restore.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "contactsleuth.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Page records store individual page fetches
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		UNIQUE(url, domain)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	-- Facts store aggregated contact details discovered per domain
	CREATE TABLE IF NOT EXISTS facts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		confidence REAL DEFAULT 1.0,
		source_url TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(domain, type, value)
	);

	CREATE INDEX IF NOT EXISTS idx_facts_domain ON facts(domain);
	CREATE INDEX IF NOT EXISTS idx_facts_type ON facts(type);
	CREATE INDEX IF NOT EXISTS idx_facts_value ON facts(value);

	-- Crawl reports store complete crawl results as JSON
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		fact_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON crawl_reports(domain);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON crawl_reports(timestamp);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page fetch.
type PageRecord struct {
	ID         int64
	URL        string
	Domain     string
	Timestamp  time.Time
	StatusCode int
}

// InsertPageRecord inserts or updates a page record.
// Uses UPSERT to handle duplicates (same URL + domain).
func (cdb *CrawlDB) InsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, domain, status_code)
	VALUES (?, ?, ?)
	ON CONFLICT(url, domain) DO UPDATE SET
		status_code = excluded.status_code,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := cdb.db.ExecContext(ctx, query,
		record.URL,
		record.Domain,
		record.StatusCode,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by URL and domain.
func (cdb *CrawlDB) GetPageRecord(ctx context.Context, url, domain string) (*PageRecord, error) {
	query := `
	SELECT id, url, domain, timestamp, status_code
	FROM pages
	WHERE url = ? AND domain = ?
	`

	var record PageRecord
	var timestamp string

	err := cdb.db.QueryRowContext(ctx, query, url, domain).Scan(
		&record.ID,
		&record.URL,
		&record.Domain,
		&timestamp,
		&record.StatusCode,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	// Parse timestamp (SQLite may return different formats depending on version/configuration)
	record.Timestamp = parseTimestamp(timestamp)

	return &record, nil
}

// HasRecentCrawl checks if a URL was crawled within the specified duration.
func (cdb *CrawlDB) HasRecentCrawl(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// upsertFact inserts or updates one aggregated fact for a domain.
// Confidence only moves upward so a weaker later crawl can't demote a fact.
func (cdb *CrawlDB) upsertFact(ctx context.Context, domain string, fact model.AggregatedFact) error {
	query := `
	INSERT INTO facts (domain, type, value, confidence, source_url)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(domain, type, value) DO UPDATE SET
		confidence = MAX(confidence, excluded.confidence),
		source_url = CASE WHEN excluded.confidence > confidence THEN excluded.source_url ELSE source_url END,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := cdb.db.ExecContext(ctx, query,
		domain,
		fact.Type.String(),
		fact.Value,
		fact.Confidence,
		fact.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fact: %w", err)
	}

	return nil
}

// QueryFacts queries stored facts with optional filters.
// Empty domain or factType matches everything.
func (cdb *CrawlDB) QueryFacts(ctx context.Context, domain, factType string) ([]model.AggregatedFact, error) {
	query := `
	SELECT type, value, confidence, source_url
	FROM facts
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if domain != "" {
		query += " AND domain = ?"
		args = append(args, domain)
	}
	if factType != "" {
		query += " AND type = ?"
		args = append(args, factType)
	}

	query += " ORDER BY confidence DESC, value"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var results []model.AggregatedFact
	for rows.Next() {
		var fact model.AggregatedFact
		var factTypeStr string
		var sourceURL sql.NullString

		err := rows.Scan(
			&factTypeStr,
			&fact.Value,
			&fact.Confidence,
			&sourceURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}

		fact.Type = model.FactType(factTypeStr)
		fact.SourceURL = sourceURL.String
		results = append(results, fact)
	}

	return results, rows.Err()
}

// SaveReport saves a complete crawl report: the report JSON, its pages,
// and its aggregated facts. Used by the pipeline's persist step.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) error {
	// Serialize report to JSON
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	// Summarize fact counts per type for cheap history listings
	factSummary := make(map[string]int)
	for _, fact := range report.Facts {
		factSummary[fact.Type.String()]++
	}
	summaryJSON, _ := json.Marshal(factSummary) //nolint:errcheck,errchkjson // factSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO crawl_reports (domain, seed_url, report_json, fact_summary)
	VALUES (?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		report.Domain,
		report.StartURL,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}

	for pageURL, statusCode := range report.Pages {
		if _, err := cdb.InsertPageRecord(ctx, &PageRecord{
			URL:        pageURL,
			Domain:     report.Domain,
			StatusCode: statusCode,
		}); err != nil {
			return err
		}
	}

	for _, fact := range report.Facts {
		if err := cdb.upsertFact(ctx, report.Domain, fact); err != nil {
			return err
		}
	}

	return nil
}

// GetLatestReport retrieves the most recent crawl report for a domain.
func (cdb *CrawlDB) GetLatestReport(ctx context.Context, domain string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE domain = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, domain).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListCrawledDomains returns a list of all domains with stored reports.
func (cdb *CrawlDB) ListCrawledDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT domain FROM crawl_reports
	ORDER BY domain
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// ReportMetadata contains summary information about a stored crawl report.
// This is used for displaying crawl history without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// Domain is the crawled seed domain.
	Domain string

	// SeedURL is the normalized seed URL of the crawl.
	SeedURL string

	// Timestamp is when the crawl was performed.
	Timestamp time.Time

	// FactSummary contains fact counts by fact type.
	FactSummary map[string]int
}

// GetCrawlHistory retrieves crawl report metadata for a domain.
// This is more efficient than loading full reports when only metadata
// is needed.
func (cdb *CrawlDB) GetCrawlHistory(ctx context.Context, domain string) ([]ReportMetadata, error) {
	query := `
	SELECT id, domain, seed_url, timestamp, fact_summary
	FROM crawl_reports
	WHERE domain = ?
	ORDER BY timestamp DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Domain, &meta.SeedURL, &timestamp, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		// Parse timestamp
		meta.Timestamp = parseTimestamp(timestamp)

		// Parse fact summary
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.FactSummary); err != nil {
				meta.FactSummary = make(map[string]int)
			}
		} else {
			meta.FactSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReportByID retrieves a crawl report by its database ID.
func (cdb *CrawlDB) GetReportByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE id = ?
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
