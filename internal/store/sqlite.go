package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/agrisight/agrisight/internal/model"
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
CREATE TABLE IF NOT EXISTS analysis_runs (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'pending',
	farm_size_ha    REAL NOT NULL,
	weather_summary TEXT,
	demo            INTEGER NOT NULL DEFAULT 0,
	recommendation  TEXT,
	report          TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	filename    TEXT NOT NULL,
	content     TEXT NOT NULL,
	uploaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS parcels (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	area_ha      REAL NOT NULL,
	centroid_lat REAL NOT NULL,
	centroid_lon REAL NOT NULL,
	imported_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analysis_runs_status ON analysis_runs(status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, farmSizeHa float64) (*model.AnalysisRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, status, farm_size_ha, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(model.RunStatusPending), farmSizeHa, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.AnalysisRun{
		ID:         id,
		Status:     model.RunStatusPending,
		FarmSizeHa: farmSizeHa,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, run *model.AnalysisRun) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs
		 SET status = ?, weather_summary = ?, demo = ?, recommendation = ?, report = ?, updated_at = ?
		 WHERE id = ?`,
		string(model.RunStatusCompleted), run.WeatherSummary, boolToInt(run.Demo),
		nullableJSON(run.Recommendation), nullableJSON(run.Report), time.Now().UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", run.ID)
	}
	return checkRowsAffected(res, "run", run.ID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, farm_size_ha, weather_summary, demo, recommendation, report, created_at, updated_at
		 FROM analysis_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error) {
	query := `SELECT id, status, farm_size_ha, weather_summary, demo, recommendation, report, created_at, updated_at
	          FROM analysis_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
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

	var runs []model.AnalysisRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, filename, content string) (*model.Document, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, content, uploaded_at) VALUES (?, ?, ?, ?)`,
		id, filename, content, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert document %s", filename)
	}

	return &model.Document{ID: id, Filename: filename, Content: content, UploadedAt: now}, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, content, uploaded_at FROM documents ORDER BY uploaded_at ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.Content, &d.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

func (s *SQLiteStore) SaveParcels(ctx context.Context, parcels []model.Parcel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for _, p := range parcels {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		importedAt := p.ImportedAt
		if importedAt.IsZero() {
			importedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO parcels (id, name, area_ha, centroid_lat, centroid_lon, imported_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.Name, p.AreaHa, p.CentroidLat, p.CentroidLon, importedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert parcel %s", p.Name)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit parcels")
}

func (s *SQLiteStore) ListParcels(ctx context.Context) ([]model.Parcel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, area_ha, centroid_lat, centroid_lon, imported_at FROM parcels ORDER BY name ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list parcels")
	}
	defer rows.Close()

	var parcels []model.Parcel
	for rows.Next() {
		var p model.Parcel
		if err := rows.Scan(&p.ID, &p.Name, &p.AreaHa, &p.CentroidLat, &p.CentroidLon, &p.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan parcel")
		}
		parcels = append(parcels, p)
	}
	return parcels, eris.Wrap(rows.Err(), "sqlite: list parcels iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.AnalysisRun, error) {
	var (
		r              model.AnalysisRun
		status         string
		weatherSummary sql.NullString
		demo           int
		recommendation sql.NullString
		report         sql.NullString
	)
	err := row.Scan(&r.ID, &status, &r.FarmSizeHa, &weatherSummary, &demo,
		&recommendation, &report, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Status = model.RunStatus(status)
	r.WeatherSummary = weatherSummary.String
	r.Demo = demo != 0
	if recommendation.Valid {
		r.Recommendation = []byte(recommendation.String)
	}
	if report.Valid {
		r.Report = []byte(report.String)
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
