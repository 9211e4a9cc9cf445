package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	company      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	request      TEXT NOT NULL,
	contacts     TEXT,
	emails       TEXT,
	job_context  TEXT,
	activity_log TEXT,
	error        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, req model.SearchRequest) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal request")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, company, status, request, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, req.Company, string(model.RunStatusPending), string(reqJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run) error {
	cols, err := marshalRunColumns(run)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run")
	}

	run.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, contacts = ?, emails = ?, job_context = ?,
		 activity_log = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(run.Status), cols.contacts, cols.emails, cols.jobContext,
		cols.activityLog, run.Error, run.UpdatedAt, run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save run %s", run.ID)
	}
	return checkRowsAffected(res, run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, request, contacts, emails, job_context, activity_log, error, created_at, updated_at
		 FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, request, contacts, emails, job_context, activity_log, error, created_at, updated_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}

type runColumns struct {
	contacts    sql.NullString
	emails      sql.NullString
	jobContext  sql.NullString
	activityLog sql.NullString
}

func marshalRunColumns(run *model.Run) (runColumns, error) {
	var cols runColumns

	set := func(dst *sql.NullString, v any, present bool) error {
		if !present {
			return nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		*dst = sql.NullString{String: string(data), Valid: true}
		return nil
	}

	if err := set(&cols.contacts, run.Contacts, run.Contacts != nil); err != nil {
		return cols, err
	}
	if err := set(&cols.emails, run.Emails, run.Emails != nil); err != nil {
		return cols, err
	}
	if err := set(&cols.jobContext, run.JobContext, run.JobContext != nil); err != nil {
		return cols, err
	}
	if err := set(&cols.activityLog, run.ActivityLog, run.ActivityLog != nil); err != nil {
		return cols, err
	}
	return cols, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var requestJSON string
	var cols runColumns

	err := row.Scan(&r.ID, &r.Status, &requestJSON, &cols.contacts, &cols.emails,
		&cols.jobContext, &cols.activityLog, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(requestJSON), &r.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if err := unmarshalRunColumns(cols, &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal run")
	}
	return &r, nil
}

func unmarshalRunColumns(cols runColumns, r *model.Run) error {
	if cols.contacts.Valid {
		if err := json.Unmarshal([]byte(cols.contacts.String), &r.Contacts); err != nil {
			return err
		}
	}
	if cols.emails.Valid {
		if err := json.Unmarshal([]byte(cols.emails.String), &r.Emails); err != nil {
			return err
		}
	}
	if cols.jobContext.Valid {
		r.JobContext = &model.JobContext{}
		if err := json.Unmarshal([]byte(cols.jobContext.String), r.JobContext); err != nil {
			return err
		}
	}
	if cols.activityLog.Valid {
		if err := json.Unmarshal([]byte(cols.activityLog.String), &r.ActivityLog); err != nil {
			return err
		}
	}
	return nil
}
