package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/redline-leasing/driver-funnel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	contact_id    TEXT NOT NULL DEFAULT '',
	document_type TEXT NOT NULL,
	filename      TEXT NOT NULL,
	url           TEXT NOT NULL,
	size          INTEGER NOT NULL,
	mime          TEXT NOT NULL,
	uploaded_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	contact_id   TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL,
	step         INTEGER NOT NULL,
	prequalified INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_contact_id ON documents(contact_id);
CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(email);
CREATE INDEX IF NOT EXISTS idx_submissions_contact_id ON submissions(contact_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordDocument(ctx context.Context, doc model.DocumentRecord) (*model.DocumentRecord, error) {
	doc.ID = uuid.New().String()
	doc.UploadedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, contact_id, document_type, filename, url, size, mime, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ContactID, string(doc.Type), doc.Filename, doc.URL, doc.Size, doc.MIME, doc.UploadedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert document")
	}
	return &doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, contactID string) ([]model.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, contact_id, document_type, filename, url, size, mime, uploaded_at
		 FROM documents WHERE contact_id = ? ORDER BY uploaded_at DESC`,
		contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.DocumentRecord
	for rows.Next() {
		var d model.DocumentRecord
		var typ string
		if err := rows.Scan(&d.ID, &d.ContactID, &typ, &d.Filename, &d.URL, &d.Size, &d.MIME, &d.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		d.Type = model.DocumentType(typ)
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: iterate documents")
}

func (s *SQLiteStore) RecordSubmission(ctx context.Context, sub model.SubmissionRecord) (*model.SubmissionRecord, error) {
	sub.ID = uuid.New().String()
	sub.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, kind, contact_id, email, step, prequalified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, string(sub.Kind), sub.ContactID, sub.Email, sub.Step, sub.Prequalified, sub.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert submission")
	}
	return &sub, nil
}
