package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// DB wraps a SQLite database holding a dataset.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

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
		CREATE TABLE IF NOT EXISTS persons (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS affiliations (
			person_id TEXT NOT NULL REFERENCES persons(id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (person_id, position)
		);

		CREATE TABLE IF NOT EXISTS publications (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			year INTEGER NOT NULL,
			venue TEXT NOT NULL DEFAULT ''
		);

		-- Author order is preserved through position.
		CREATE TABLE IF NOT EXISTS publication_authors (
			publication_id TEXT NOT NULL REFERENCES publications(id),
			position INTEGER NOT NULL,
			person_id TEXT NOT NULL,
			PRIMARY KEY (publication_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_publication_authors_person ON publication_authors(person_id);

		CREATE TABLE IF NOT EXISTS original_authors (
			person_id TEXT PRIMARY KEY
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Load reads the whole dataset. Publication types the model does not know
// are loaded as "other".
func (d *DB) Load(ctx context.Context) (Dataset, error) {
	var ds Dataset

	rows, err := d.db.QueryContext(ctx, `SELECT id, name FROM persons ORDER BY rowid`)
	if err != nil {
		return Dataset{}, fmt.Errorf("querying persons: %w", err)
	}
	index := make(map[model.PersonID]int)
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			rows.Close()
			return Dataset{}, fmt.Errorf("scanning person: %w", err)
		}
		index[p.ID] = len(ds.Persons)
		ds.Persons = append(ds.Persons, p)
	}
	if err := closeRows(rows); err != nil {
		return Dataset{}, fmt.Errorf("reading persons: %w", err)
	}

	rows, err = d.db.QueryContext(ctx, `SELECT person_id, name FROM affiliations ORDER BY person_id, position`)
	if err != nil {
		return Dataset{}, fmt.Errorf("querying affiliations: %w", err)
	}
	for rows.Next() {
		var id model.PersonID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return Dataset{}, fmt.Errorf("scanning affiliation: %w", err)
		}
		if i, ok := index[id]; ok {
			ds.Persons[i].Affiliations = append(ds.Persons[i].Affiliations, name)
		}
	}
	if err := closeRows(rows); err != nil {
		return Dataset{}, fmt.Errorf("reading affiliations: %w", err)
	}

	rows, err = d.db.QueryContext(ctx, `SELECT id, title, type, year, venue FROM publications ORDER BY rowid`)
	if err != nil {
		return Dataset{}, fmt.Errorf("querying publications: %w", err)
	}
	pubIndex := make(map[string]int)
	for rows.Next() {
		var p model.Publication
		var typ string
		if err := rows.Scan(&p.ID, &p.Title, &typ, &p.Year, &p.VenueID); err != nil {
			rows.Close()
			return Dataset{}, fmt.Errorf("scanning publication: %w", err)
		}
		p.Type = model.PublicationType(typ)
		pubIndex[p.ID] = len(ds.Publications)
		ds.Publications = append(ds.Publications, p)
	}
	if err := closeRows(rows); err != nil {
		return Dataset{}, fmt.Errorf("reading publications: %w", err)
	}

	rows, err = d.db.QueryContext(ctx, `SELECT publication_id, person_id FROM publication_authors ORDER BY publication_id, position`)
	if err != nil {
		return Dataset{}, fmt.Errorf("querying authors: %w", err)
	}
	for rows.Next() {
		var pubID string
		var personID model.PersonID
		if err := rows.Scan(&pubID, &personID); err != nil {
			rows.Close()
			return Dataset{}, fmt.Errorf("scanning author: %w", err)
		}
		if i, ok := pubIndex[pubID]; ok {
			ds.Publications[i].AuthorIDs = append(ds.Publications[i].AuthorIDs, personID)
		}
	}
	if err := closeRows(rows); err != nil {
		return Dataset{}, fmt.Errorf("reading authors: %w", err)
	}

	rows, err = d.db.QueryContext(ctx, `SELECT person_id FROM original_authors ORDER BY rowid`)
	if err != nil {
		return Dataset{}, fmt.Errorf("querying original authors: %w", err)
	}
	for rows.Next() {
		var id model.PersonID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return Dataset{}, fmt.Errorf("scanning original author: %w", err)
		}
		ds.OriginalAuthors = append(ds.OriginalAuthors, id)
	}
	if err := closeRows(rows); err != nil {
		return Dataset{}, fmt.Errorf("reading original authors: %w", err)
	}

	ds.normalize()
	return ds, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}

// Import replaces the database contents with ds in one transaction.
func (d *DB) Import(ctx context.Context, ds Dataset) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"publication_authors", "publications", "affiliations", "persons", "original_authors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	personStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO persons (id, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing person insert: %w", err)
	}
	defer personStmt.Close()
	affStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO affiliations (person_id, position, name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing affiliation insert: %w", err)
	}
	defer affStmt.Close()

	for _, p := range ds.Persons {
		if _, err := personStmt.ExecContext(ctx, p.ID, p.Name); err != nil {
			return fmt.Errorf("inserting person %s: %w", p.ID, err)
		}
		for i, a := range p.Affiliations {
			if _, err := affStmt.ExecContext(ctx, p.ID, i, a); err != nil {
				return fmt.Errorf("inserting affiliation for %s: %w", p.ID, err)
			}
		}
	}

	pubStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO publications (id, title, type, year, venue) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing publication insert: %w", err)
	}
	defer pubStmt.Close()
	authStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO publication_authors (publication_id, position, person_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing author insert: %w", err)
	}
	defer authStmt.Close()

	for _, p := range ds.Publications {
		if _, err := pubStmt.ExecContext(ctx, p.ID, p.Title, string(p.Type), p.Year, p.VenueID); err != nil {
			return fmt.Errorf("inserting publication %s: %w", p.ID, err)
		}
		for i, a := range p.AuthorIDs {
			if _, err := authStmt.ExecContext(ctx, p.ID, i, a); err != nil {
				return fmt.Errorf("inserting author of %s: %w", p.ID, err)
			}
		}
	}

	for _, id := range ds.OriginalAuthors {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO original_authors (person_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("inserting original author %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}
