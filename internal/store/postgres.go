package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/listing-loader/internal/db"
	"github.com/sells-group/listing-loader/internal/model"
)

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to PostgreSQL and returns a PostgresStore.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Open(ctx, connString, poolCfg)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// postgresSchema is applied in order: business_tag references both other tables.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tags (
	id_tag   SERIAL PRIMARY KEY,
	name_tag TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS business (
	id_b     SERIAL PRIMARY KEY,
	name_b   TEXT NOT NULL,
	phone    TEXT,
	website  TEXT,
	address  TEXT,
	city     TEXT,
	zip_code TEXT,
	lat      DOUBLE PRECISION NOT NULL,
	lng      DOUBLE PRECISION NOT NULL,
	rating   DOUBLE PRECISION NOT NULL,
	g_rating DOUBLE PRECISION
)`,
	`CREATE TABLE IF NOT EXISTS business_tag (
	id_tag INTEGER NOT NULL REFERENCES tags (id_tag),
	id_b   INTEGER NOT NULL REFERENCES business (id_b)
)`,
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "postgres: migrate")
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Write(ctx context.Context, businesses []model.Business, tags model.TagSet) (*WriteResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	res, err := writeBatch(ctx, pgInserter{tx: tx}, businesses, tags)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit tx")
	}
	return res, nil
}

type pgInserter struct {
	tx pgx.Tx
}

func (i pgInserter) insertTag(ctx context.Context, name string) (int64, error) {
	var id int64
	err := i.tx.QueryRow(ctx,
		`INSERT INTO tags (name_tag) VALUES ($1) RETURNING id_tag`,
		name,
	).Scan(&id)
	return id, err
}

func (i pgInserter) insertBusiness(ctx context.Context, b model.Business) (int64, error) {
	var id int64
	err := i.tx.QueryRow(ctx,
		`INSERT INTO business (name_b, phone, website, address, city, zip_code, lat, lng, rating, g_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id_b`,
		b.Name, b.Phone, b.Website, b.Address, b.City, b.ZipCode,
		b.Latitude, b.Longitude, b.Rating, b.GoogleRating,
	).Scan(&id)
	return id, err
}

func (i pgInserter) insertLink(ctx context.Context, tagID, businessID int64) error {
	_, err := i.tx.Exec(ctx,
		`INSERT INTO business_tag (id_tag, id_b) VALUES ($1, $2)`,
		tagID, businessID,
	)
	return err
}

func (s *PostgresStore) Tags(ctx context.Context) ([]TagRow, error) {
	rows, err := s.pool.Query(ctx, selectTags)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tags")
	}
	defer rows.Close()

	var out []TagRow
	for rows.Next() {
		var t TagRow
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tag")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list tags")
}

func (s *PostgresStore) Businesses(ctx context.Context) ([]BusinessRow, error) {
	rows, err := s.pool.Query(ctx, selectBusinesses)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list businesses")
	}
	defer rows.Close()

	var out []BusinessRow
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan business")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list businesses")
}

func (s *PostgresStore) Links(ctx context.Context) ([]Link, error) {
	rows, err := s.pool.Query(ctx, selectLinks)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list links")
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.TagID, &l.BusinessID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan link")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list links")
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, statsQuery).Scan(&st.Tags, &st.Businesses, &st.Links, &st.OrphanLinks)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}
	return &st, nil
}
