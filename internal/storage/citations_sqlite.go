package storage

import (
	"database/sql"
	"fmt"
)

// Citation is a directed citer → cited edge.
type Citation struct {
	CiterID string `json:"citer_id"`
	CitedID string `json:"cited_id"`
}

func createCitationsSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS citations (
			citer_id TEXT NOT NULL,
			cited_id TEXT NOT NULL,
			PRIMARY KEY (citer_id, cited_id)
		);

		CREATE INDEX IF NOT EXISTS idx_citations_citer ON citations(citer_id);
		CREATE INDEX IF NOT EXISTS idx_citations_cited ON citations(cited_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Citers returns the record ids citing id, sorted.
func (d *DB) Citers(id string) ([]string, error) {
	return d.queryIDs(`SELECT citer_id FROM citations WHERE cited_id = ? ORDER BY citer_id`, id)
}

// Cited returns the record ids cited by id, sorted.
func (d *DB) Cited(id string) ([]string, error) {
	return d.queryIDs(`SELECT cited_id FROM citations WHERE citer_id = ? ORDER BY cited_id`, id)
}

// AllCitations returns every edge ordered by citer, then cited.
func (d *DB) AllCitations() ([]Citation, error) {
	rows, err := d.db.Query(`SELECT citer_id, cited_id FROM citations ORDER BY citer_id, cited_id`)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	var out []Citation
	for rows.Next() {
		var c Citation
		if err := rows.Scan(&c.CiterID, &c.CitedID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountCitations returns the total number of edges.
func (d *DB) CountCitations() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM citations").Scan(&count)
	return count, err
}

func (d *DB) queryIDs(query, id string) ([]string, error) {
	rows, err := d.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("querying citations for %s: %w", id, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		ids = append(ids, s)
	}
	return ids, rows.Err()
}
