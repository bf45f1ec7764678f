package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/listing-loader/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path with foreign keys enforced.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tags (
	id_tag   INTEGER PRIMARY KEY AUTOINCREMENT,
	name_tag TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS business (
	id_b     INTEGER PRIMARY KEY AUTOINCREMENT,
	name_b   TEXT NOT NULL,
	phone    TEXT,
	website  TEXT,
	address  TEXT,
	city     TEXT,
	zip_code TEXT,
	lat      REAL NOT NULL,
	lng      REAL NOT NULL,
	rating   REAL NOT NULL,
	g_rating REAL
)`,
	`CREATE TABLE IF NOT EXISTS business_tag (
	id_tag INTEGER NOT NULL REFERENCES tags (id_tag),
	id_b   INTEGER NOT NULL REFERENCES business (id_b)
)`,
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "sqlite: migrate")
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Write(ctx context.Context, businesses []model.Business, tags model.TagSet) (*WriteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := writeBatch(ctx, sqliteInserter{tx: tx}, businesses, tags)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit tx")
	}
	return res, nil
}

type sqliteInserter struct {
	tx *sql.Tx
}

func (i sqliteInserter) insertTag(ctx context.Context, name string) (int64, error) {
	res, err := i.tx.ExecContext(ctx, `INSERT INTO tags (name_tag) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (i sqliteInserter) insertBusiness(ctx context.Context, b model.Business) (int64, error) {
	res, err := i.tx.ExecContext(ctx,
		`INSERT INTO business (name_b, phone, website, address, city, zip_code, lat, lng, rating, g_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Phone, b.Website, b.Address, b.City, b.ZipCode,
		b.Latitude, b.Longitude, b.Rating, b.GoogleRating,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (i sqliteInserter) insertLink(ctx context.Context, tagID, businessID int64) error {
	_, err := i.tx.ExecContext(ctx,
		`INSERT INTO business_tag (id_tag, id_b) VALUES (?, ?)`,
		tagID, businessID,
	)
	return err
}

func (s *SQLiteStore) Tags(ctx context.Context) ([]TagRow, error) {
	rows, err := s.db.QueryContext(ctx, selectTags)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tags")
	}
	defer rows.Close()

	var out []TagRow
	for rows.Next() {
		var t TagRow
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tag")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list tags")
}

func (s *SQLiteStore) Businesses(ctx context.Context) ([]BusinessRow, error) {
	rows, err := s.db.QueryContext(ctx, selectBusinesses)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close()

	var out []BusinessRow
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan business")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list businesses")
}

func (s *SQLiteStore) Links(ctx context.Context) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx, selectLinks)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list links")
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.TagID, &l.BusinessID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan link")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list links")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, statsQuery).Scan(&st.Tags, &st.Businesses, &st.Links, &st.OrphanLinks)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	return &st, nil
}
