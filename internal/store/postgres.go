package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool creates a PostgresStore over an existing pool.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	contact_id    TEXT NOT NULL DEFAULT '',
	document_type TEXT NOT NULL,
	filename      TEXT NOT NULL,
	url           TEXT NOT NULL,
	size          BIGINT NOT NULL,
	mime          TEXT NOT NULL,
	uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	contact_id   TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL,
	step         INTEGER NOT NULL,
	prequalified BOOLEAN NOT NULL DEFAULT false,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_contact_id ON documents(contact_id);
CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(email);
CREATE INDEX IF NOT EXISTS idx_submissions_contact_id ON submissions(contact_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) RecordDocument(ctx context.Context, doc model.DocumentRecord) (*model.DocumentRecord, error) {
	doc.ID = uuid.New().String()
	doc.UploadedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, contact_id, document_type, filename, url, size, mime, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.ContactID, string(doc.Type), doc.Filename, doc.URL, doc.Size, doc.MIME, doc.UploadedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert document")
	}
	return &doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, contactID string) ([]model.DocumentRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, contact_id, document_type, filename, url, size, mime, uploaded_at
		 FROM documents WHERE contact_id = $1 ORDER BY uploaded_at DESC`,
		contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.DocumentRecord
	for rows.Next() {
		var d model.DocumentRecord
		var typ string
		if err := rows.Scan(&d.ID, &d.ContactID, &typ, &d.Filename, &d.URL, &d.Size, &d.MIME, &d.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		d.Type = model.DocumentType(typ)
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: iterate documents")
}

func (s *PostgresStore) RecordSubmission(ctx context.Context, sub model.SubmissionRecord) (*model.SubmissionRecord, error) {
	sub.ID = uuid.New().String()
	sub.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO submissions (id, kind, contact_id, email, step, prequalified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sub.ID, string(sub.Kind), sub.ContactID, sub.Email, sub.Step, sub.Prequalified, sub.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert submission")
	}
	return &sub, nil
}
