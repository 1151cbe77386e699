// Package store persists quotations in Postgres. Identity of a quotation is
// its original text plus original language; inserts that collide with an
// existing row are skipped, never overwritten.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type Store struct {
	DB *sql.DB
}

// Quotation mirrors one row of the quotations table. Translation columns stay
// empty until an enrichment pass fills them.
type Quotation struct {
	ID             int64
	TextOriginal   string
	LangOriginal   string
	TextTranslated string
	LangTranslated string
	Author         string
	SourceURL      string
	Tags           []string
	IsValidated    bool
	CreatedAt      time.Time
}

// AuthorCount is one row of the most-quoted-authors ranking.
type AuthorCount struct {
	Author string
	Count  int64
}

// Stats summarizes the table for the CLI and the ops API.
type Stats struct {
	Total             int64
	ByLanguage        map[string]int64
	BySource          map[string]int64
	TopAuthors        []AuthorCount
	AuthorsByLanguage map[string]int64
}

func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// InsertQuotations writes one batch in a single transaction. Rows whose
// (text_original, language_original) already exist are skipped. Returns the
// number of rows actually inserted.
func (s *Store) InsertQuotations(ctx context.Context, batch []Quotation) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO quotations
  (text_original, language_original, text_translated, language_translated, author, source_url, tags)
VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), $6, $7)
ON CONFLICT (text_original, language_original) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, q := range batch {
		res, err := stmt.ExecContext(ctx,
			q.TextOriginal, q.LangOriginal, q.TextTranslated, q.LangTranslated,
			q.Author, q.SourceURL, pq.Array(q.Tags))
		if err != nil {
			return 0, fmt.Errorf("insert quotation: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return inserted, nil
}

// GetQuotationID looks up a quotation by its identity pair.
func (s *Store) GetQuotationID(ctx context.Context, textOriginal, langOriginal string) (int64, bool, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM quotations WHERE text_original = $1 AND language_original = $2`,
		textOriginal, langOriginal).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// EnrichQuotation fills missing columns of an existing row. Present values
// win over incoming ones, so enrichment never clobbers earlier data.
func (s *Store) EnrichQuotation(ctx context.Context, q Quotation) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
UPDATE quotations SET
  text_translated = COALESCE(text_translated, NULLIF($3,'')),
  language_translated = COALESCE(language_translated, NULLIF($4,'')),
  author = COALESCE(author, NULLIF($5,'')),
  tags = CASE WHEN tags IS NULL OR cardinality(tags) = 0 THEN $6 ELSE tags END
WHERE text_original = $1 AND language_original = $2`,
		q.TextOriginal, q.LangOriginal, q.TextTranslated, q.LangTranslated,
		q.Author, pq.Array(q.Tags))
	if err != nil {
		return false, fmt.Errorf("enrich quotation: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ClearQuotations deletes every row. The importer calls this only after an
// explicit operator confirmation.
func (s *Store) ClearQuotations(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM quotations`)
	if err != nil {
		return fmt.Errorf("clear quotations: %w", err)
	}
	return nil
}

func (s *Store) CountQuotations(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotations`).Scan(&n)
	return n, err
}

// Statistics aggregates table counts by language, source and author.
func (s *Store) Statistics(ctx context.Context) (Stats, error) {
	st := Stats{
		ByLanguage:        map[string]int64{},
		BySource:          map[string]int64{},
		AuthorsByLanguage: map[string]int64{},
	}

	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotations`).Scan(&st.Total); err != nil {
		return Stats{}, fmt.Errorf("count quotations: %w", err)
	}

	if err := s.groupCount(ctx,
		`SELECT language_original, COUNT(*) FROM quotations GROUP BY language_original`,
		st.ByLanguage); err != nil {
		return Stats{}, fmt.Errorf("count by language: %w", err)
	}
	if err := s.groupCount(ctx,
		`SELECT source_url, COUNT(*) FROM quotations GROUP BY source_url`,
		st.BySource); err != nil {
		return Stats{}, fmt.Errorf("count by source: %w", err)
	}
	if err := s.groupCount(ctx,
		`SELECT language_original, COUNT(DISTINCT author) FROM quotations WHERE author IS NOT NULL GROUP BY language_original`,
		st.AuthorsByLanguage); err != nil {
		return Stats{}, fmt.Errorf("count authors by language: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
SELECT author, COUNT(*) AS n FROM quotations
WHERE author IS NOT NULL
GROUP BY author ORDER BY n DESC, author LIMIT 10`)
	if err != nil {
		return Stats{}, fmt.Errorf("top authors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ac AuthorCount
		if err := rows.Scan(&ac.Author, &ac.Count); err != nil {
			return Stats{}, err
		}
		st.TopAuthors = append(st.TopAuthors, ac)
	}
	return st, rows.Err()
}

func (s *Store) groupCount(ctx context.Context, query string, into map[string]int64) error {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// ListQuotations pages through the table in insertion order, for the search
// indexer and the ops API.
func (s *Store) ListQuotations(ctx context.Context, limit, offset int) ([]Quotation, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, text_original, language_original, COALESCE(text_translated,''),
       COALESCE(language_translated,''), COALESCE(author,''), source_url,
       COALESCE(tags, '{}'), is_validated, created_at
FROM quotations ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		var q Quotation
		if err := rows.Scan(&q.ID, &q.TextOriginal, &q.LangOriginal, &q.TextTranslated,
			&q.LangTranslated, &q.Author, &q.SourceURL, pq.Array(&q.Tags),
			&q.IsValidated, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
