package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neurostuff/curate/internal/study"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection. It holds the lookup cache and a
// queryable index of the stubs file. Both can be deleted and rebuilt.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// stubFields is the column list of the stub index.
const stubFields = `id, title, authors, doi, pmid, pmcid, article_year,
	journal, identification_source, neurostore_id, excluded`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Bibliographic lookup cache, keyed by "pmid:<id>" or "doi:<doi>"
		CREATE TABLE IF NOT EXISTS details (
			key TEXT PRIMARY KEY,
			study_json TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);

		-- Stub index rebuilt from stubs.jsonl
		CREATE TABLE IF NOT EXISTS stubs (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			doi TEXT,
			pmid TEXT,
			pmcid TEXT,
			article_year TEXT,
			journal TEXT,
			identification_source TEXT,
			neurostore_id TEXT,
			excluded INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_stubs_pmid ON stubs(pmid) WHERE pmid IS NOT NULL AND pmid != '';
		CREATE INDEX IF NOT EXISTS idx_stubs_doi ON stubs(doi) WHERE doi IS NOT NULL AND doi != '';
	`
	_, err := db.Exec(schema)
	return err
}

// DetailsKey returns the cache key for an identifier pair. PMID wins.
func DetailsKey(pmid, doi string) string {
	if pmid = strings.TrimSpace(pmid); pmid != "" {
		return "pmid:" + pmid
	}
	if doi = study.NormalizeDOI(doi); doi != "" {
		return "doi:" + doi
	}
	return ""
}

// GetDetails returns cached details for key if present and younger than
// maxAge. A maxAge of zero disables expiry.
func (d *DB) GetDetails(key string, maxAge time.Duration) (*study.BaseStudy, bool, error) {
	var data string
	var fetched int64
	err := d.db.QueryRow(`SELECT study_json, fetched_at FROM details WHERE key = ?`, key).Scan(&data, &fetched)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached details: %w", err)
	}

	if maxAge > 0 && d.now().Sub(time.Unix(fetched, 0)) > maxAge {
		return nil, false, nil
	}

	var bs study.BaseStudy
	if err := json.Unmarshal([]byte(data), &bs); err != nil {
		return nil, false, fmt.Errorf("decoding cached details: %w", err)
	}
	return &bs, true, nil
}

// PutDetails stores details under key, replacing any previous entry.
func (d *DB) PutDetails(key string, bs study.BaseStudy) error {
	data, err := json.Marshal(bs)
	if err != nil {
		return fmt.Errorf("encoding details: %w", err)
	}
	_, err = d.db.Exec(`INSERT INTO details (key, study_json, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET study_json = excluded.study_json, fetched_at = excluded.fetched_at`,
		key, string(data), d.now().Unix())
	if err != nil {
		return fmt.Errorf("writing cached details: %w", err)
	}
	return nil
}

// ClearDetails removes every cached lookup and returns how many were removed.
func (d *DB) ClearDetails() (int64, error) {
	res, err := d.db.Exec(`DELETE FROM details`)
	if err != nil {
		return 0, fmt.Errorf("clearing details cache: %w", err)
	}
	return res.RowsAffected()
}

// RebuildFromJSONL replaces the stub index with the contents of a stubs file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	stubs, err := ReadStubs(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM stubs"); err != nil {
		return 0, fmt.Errorf("clearing stubs: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO stubs (` + stubFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stubs {
		excluded := 0
		if s.IsExcluded() {
			excluded = 1
		}
		_, err := stmt.Exec(s.ID, s.Title, s.Authors, study.NormalizeDOI(s.DOI), s.PMID, s.PMCID,
			s.ArticleYear, s.Journal, s.IdentificationSource, s.NeurostoreID, excluded)
		if err != nil {
			return 0, fmt.Errorf("inserting stub %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return len(stubs), nil
}

// StubFilters narrows ListStubs. Zero values match everything.
type StubFilters struct {
	Query    string // Case-insensitive substring of title or authors
	Source   string // Exact identification source
	Excluded *bool  // Exclusion state
	Locked   *bool  // Whether a neurostore id is set
}

// ListStubIDs returns the ids of indexed stubs matching the filters,
// ordered by title.
func (d *DB) ListStubIDs(filters StubFilters, limit int) ([]string, error) {
	query := `SELECT id FROM stubs WHERE 1=1`
	var args []interface{}

	if filters.Query != "" {
		query += " AND (title LIKE ? OR authors LIKE ?)"
		pattern := "%" + filters.Query + "%"
		args = append(args, pattern, pattern)
	}
	if filters.Source != "" {
		query += " AND identification_source = ?"
		args = append(args, filters.Source)
	}
	if filters.Excluded != nil {
		query += " AND excluded = ?"
		args = append(args, boolInt(*filters.Excluded))
	}
	if filters.Locked != nil {
		if *filters.Locked {
			query += " AND neurostore_id != ''"
		} else {
			query += " AND (neurostore_id IS NULL OR neurostore_id = '')"
		}
	}

	query += " ORDER BY title COLLATE NOCASE, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stubs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning stub: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountStubs returns the number of indexed stubs.
func (d *DB) CountStubs() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM stubs").Scan(&count)
	return count, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
