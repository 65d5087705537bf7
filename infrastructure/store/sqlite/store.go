// ABOUTME: SQLite-backed ArticleStore for persistent caching of processed articles
// ABOUTME: Stores one row per article link with a JSON payload and expiry column

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"business-digest-api/core/domain"
)

// Store implements the ArticleStore interface using SQLite.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// New opens (or creates) the SQLite store at filePath.
func New(filePath string, ttl time.Duration) (*Store, error) {
	if filePath == "" {
		filePath = "articles.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	s := &Store{db: db, ttl: ttl}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the articles table if it doesn't exist
func (s *Store) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS processed_articles (
			link TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			expiry INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_processed_articles_expiry ON processed_articles(expiry);
	`

	_, err := s.db.Exec(query)
	return err
}

// Lookup returns cached processed articles for items, in input order.
func (s *Store) Lookup(ctx context.Context, items []domain.RawArticle) ([]domain.ProcessedArticle, error) {
	found := []domain.ProcessedArticle{}
	now := time.Now().Unix()

	query := "SELECT payload FROM processed_articles WHERE link = ? AND expiry > ?"
	for _, item := range items {
		var payload []byte
		err := s.db.QueryRowContext(ctx, query, item.Link, now).Scan(&payload)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up article: %w", err)
		}

		var article domain.ProcessedArticle
		if err := json.Unmarshal(payload, &article); err != nil {
			// Unreadable payloads behave as misses so the item gets
			// reprocessed rather than failing the run.
			continue
		}
		found = append(found, article)
	}

	return found, nil
}

// FilterUncached returns the items with no live row.
func (s *Store) FilterUncached(ctx context.Context, items []domain.RawArticle) ([]domain.RawArticle, error) {
	uncached := []domain.RawArticle{}
	now := time.Now().Unix()

	query := "SELECT 1 FROM processed_articles WHERE link = ? AND expiry > ?"
	for _, item := range items {
		var one int
		err := s.db.QueryRowContext(ctx, query, item.Link, now).Scan(&one)
		if err == sql.ErrNoRows {
			uncached = append(uncached, item)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check cache for article: %w", err)
		}
	}

	return uncached, nil
}

// Update upserts processed articles inside a single transaction.
func (s *Store) Update(ctx context.Context, rawItems []domain.RawArticle, processed []domain.ProcessedArticle) error {
	if len(processed) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rawLinks := make(map[string]struct{}, len(rawItems))
	for _, item := range rawItems {
		rawLinks[item.Link] = struct{}{}
	}

	query := "INSERT OR REPLACE INTO processed_articles (link, payload, expiry) VALUES (?, ?, ?)"
	expiry := time.Now().Add(s.ttl).Unix()

	for _, article := range processed {
		if article.Link == "" {
			continue
		}
		if _, ok := rawLinks[article.Link]; !ok {
			continue
		}
		payload, err := json.Marshal(article)
		if err != nil {
			return fmt.Errorf("failed to encode article: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, article.Link, payload, expiry); err != nil {
			return fmt.Errorf("failed to store article: %w", err)
		}
	}

	return tx.Commit()
}

// CleanExpired removes expired rows and reports how many were deleted.
func (s *Store) CleanExpired(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM processed_articles WHERE expiry <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired articles: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(removed), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
