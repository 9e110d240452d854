package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteSchema is the DDL for a knowledge-base database. Aliases live in
// their own table so alias rank (the synonym-table order used for match
// confidence) is explicit.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS concepts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    concept_type TEXT NOT NULL,
    category TEXT,
    severity TEXT,
    description TEXT
);

CREATE TABLE IF NOT EXISTS concept_aliases (
    concept_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
    alias TEXT NOT NULL,
    rank INTEGER NOT NULL,
    PRIMARY KEY (concept_id, rank)
);

CREATE TABLE IF NOT EXISTS relationships (
    id INTEGER PRIMARY KEY,
    source_id TEXT NOT NULL REFERENCES concepts(id),
    target_id TEXT NOT NULL REFERENCES concepts(id),
    relation_type TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    evidence TEXT,
    description TEXT
);

CREATE INDEX IF NOT EXISTS idx_aliases_concept ON concept_aliases(concept_id);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
`

func openSQLite(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	return db, nil
}

// LoadSQLite reads a knowledge-base definition from a SQLite database
// created by SaveSQLite (or authored directly against the same schema).
func LoadSQLite(path string) (Definition, error) {
	if _, err := os.Stat(path); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	db, err := openSQLite(path)
	if err != nil {
		return Definition{}, err
	}
	defer db.Close()

	var def Definition

	rows, err := db.Query(`SELECT id, name, concept_type, COALESCE(category,''), COALESCE(severity,''), COALESCE(description,'')
		FROM concepts ORDER BY id`)
	if err != nil {
		return Definition{}, fmt.Errorf("querying concepts: %w", err)
	}
	for rows.Next() {
		var c Concept
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Category, &c.Severity, &c.Description); err != nil {
			rows.Close()
			return Definition{}, err
		}
		def.Concepts = append(def.Concepts, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Definition{}, err
	}
	rows.Close()

	// Aliases keyed by concept, in rank order.
	aliasRows, err := db.Query(`SELECT concept_id, alias FROM concept_aliases ORDER BY concept_id, rank`)
	if err != nil {
		return Definition{}, fmt.Errorf("querying aliases: %w", err)
	}
	aliases := make(map[string][]string)
	for aliasRows.Next() {
		var conceptID, alias string
		if err := aliasRows.Scan(&conceptID, &alias); err != nil {
			aliasRows.Close()
			return Definition{}, err
		}
		aliases[conceptID] = append(aliases[conceptID], alias)
	}
	if err := aliasRows.Err(); err != nil {
		aliasRows.Close()
		return Definition{}, err
	}
	aliasRows.Close()
	for i := range def.Concepts {
		def.Concepts[i].Aliases = aliases[def.Concepts[i].ID]
	}

	relRows, err := db.Query(`SELECT source_id, target_id, relation_type, weight, COALESCE(evidence,''), COALESCE(description,'')
		FROM relationships ORDER BY id`)
	if err != nil {
		return Definition{}, fmt.Errorf("querying relationships: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var r Relationship
		if err := relRows.Scan(&r.Source, &r.Target, &r.Type, &r.Weight, &r.Evidence, &r.Description); err != nil {
			return Definition{}, err
		}
		def.Relationships = append(def.Relationships, r)
	}
	if err := relRows.Err(); err != nil {
		return Definition{}, err
	}

	return def, nil
}

// SaveSQLite writes a definition to a SQLite database at path, creating the
// schema and replacing any existing contents in one transaction.
func SaveSQLite(path string, def Definition) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("initialising schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"concept_aliases", "relationships", "concepts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	conceptStmt, err := tx.Prepare(`INSERT INTO concepts (id, name, concept_type, category, severity, description)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer conceptStmt.Close()
	aliasStmt, err := tx.Prepare(`INSERT INTO concept_aliases (concept_id, alias, rank) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer aliasStmt.Close()

	for _, c := range def.Concepts {
		if _, err := conceptStmt.Exec(c.ID, c.Name, c.Type, c.Category, c.Severity, c.Description); err != nil {
			return fmt.Errorf("inserting concept %q: %w", c.ID, err)
		}
		for rank, alias := range c.Aliases {
			if _, err := aliasStmt.Exec(c.ID, alias, rank); err != nil {
				return fmt.Errorf("inserting alias %q for %q: %w", alias, c.ID, err)
			}
		}
	}

	relStmt, err := tx.Prepare(`INSERT INTO relationships (source_id, target_id, relation_type, weight, evidence, description)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer relStmt.Close()
	for _, r := range def.Relationships {
		if _, err := relStmt.Exec(r.Source, r.Target, r.Type, r.Weight, r.Evidence, r.Description); err != nil {
			return fmt.Errorf("inserting relationship %s->%s: %w", r.Source, r.Target, err)
		}
	}

	return tx.Commit()
}
