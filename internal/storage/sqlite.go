package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Benkendorfer/HEP-paper-graph/internal/graph"
)

// RankBy selects the ordering used by Top.
type RankBy string

const (
	ByCentrality RankBy = "centrality"
	ByParents    RankBy = "parents"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectNodeFields = `record_id, title, role, parent_count, centrality`

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
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			record_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			role TEXT NOT NULL,
			parent_count INTEGER NOT NULL,
			centrality REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_centrality ON nodes(centrality);
		CREATE INDEX IF NOT EXISTS idx_nodes_parents ON nodes(parent_count);

		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			record_id UNINDEXED,
			title
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return createCitationsSchema(db)
}

// RebuildFromJSONL clears the database and rebuilds it from a graph snapshot.
// Centrality is recomputed from the snapshot's edges, so stored scores that
// no longer match the edges are corrected.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	g, err := ReadGraph(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}
	return d.Rebuild(Snapshot(g))
}

// Rebuild replaces the database contents with records.
func (d *DB) Rebuild(records []NodeRecord) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "nodes_fts", "citations"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	nodeStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO nodes (record_id, title, role, parent_count, centrality)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodeStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO nodes_fts (record_id, title) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	citeStmt, err := tx.Prepare(`INSERT OR IGNORE INTO citations (citer_id, cited_id) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing citations insert: %w", err)
	}
	defer citeStmt.Close()

	for _, r := range records {
		if _, err := nodeStmt.Exec(r.RecordID, r.Title, string(r.Role), len(r.Parents), r.Centrality); err != nil {
			return 0, fmt.Errorf("inserting node %s: %w", r.RecordID, err)
		}
		if _, err := ftsStmt.Exec(r.RecordID, r.Title); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", r.RecordID, err)
		}
		for _, p := range r.Parents {
			if _, err := citeStmt.Exec(p, r.RecordID); err != nil {
				return 0, fmt.Errorf("inserting citation %s -> %s: %w", p, r.RecordID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// GetByID retrieves a node and its parents. It returns nil if absent.
func (d *DB) GetByID(id string) (*NodeRecord, error) {
	row := d.db.QueryRow(`SELECT `+selectNodeFields+` FROM nodes WHERE record_id = ?`, id)
	r, err := scanNode(row)
	if err != nil || r == nil {
		return r, err
	}
	parents, err := d.Citers(id)
	if err != nil {
		return nil, err
	}
	r.Parents = parents
	return r, nil
}

// Top returns up to limit nodes ordered by the given measure. Ties fall back
// to the other measure, then record id. A limit of zero or less returns all.
func (d *DB) Top(by RankBy, limit int) ([]NodeRecord, error) {
	var order string
	switch by {
	case ByCentrality, "":
		order = "centrality DESC, parent_count DESC, record_id"
	case ByParents:
		order = "parent_count DESC, centrality DESC, record_id"
	default:
		return nil, fmt.Errorf("unknown ranking: %s", by)
	}

	query := `SELECT ` + selectNodeFields + ` FROM nodes ORDER BY ` + order
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranking nodes: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// SearchTitle performs a full-text search over node titles.
func (d *DB) SearchTitle(query string, limit int) ([]NodeRecord, error) {
	rows, err := d.db.Query(`
		SELECT `+selectNodeFields+`
		FROM nodes
		WHERE record_id IN (SELECT record_id FROM nodes_fts WHERE nodes_fts MATCH ?)
		ORDER BY centrality DESC, record_id
		LIMIT ?`, prepareFTSQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching titles: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// Count returns the total number of nodes.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(s scanner) (*NodeRecord, error) {
	var r NodeRecord
	var role string
	err := s.Scan(&r.RecordID, &r.Title, &role, &r.ParentCount, &r.Centrality)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	r.Role = graph.Role(role)
	return &r, nil
}

func scanNodes(rows *sql.Rows) ([]NodeRecord, error) {
	var out []NodeRecord
	for rows.Next() {
		r, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, rows.Err()
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return `""`
	}
	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}
	return query
}
