package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/agrisight/agrisight/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id              UUID PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'pending',
	farm_size_ha    DOUBLE PRECISION NOT NULL,
	weather_summary TEXT,
	demo            BOOLEAN NOT NULL DEFAULT FALSE,
	recommendation  JSONB,
	report          JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id          UUID PRIMARY KEY,
	filename    TEXT NOT NULL,
	content     TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS parcels (
	id           UUID PRIMARY KEY,
	name         TEXT NOT NULL,
	area_ha      DOUBLE PRECISION NOT NULL,
	centroid_lat DOUBLE PRECISION NOT NULL,
	centroid_lon DOUBLE PRECISION NOT NULL,
	imported_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analysis_runs_status ON analysis_runs(status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, farmSizeHa float64) (*model.AnalysisRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, status, farm_size_ha, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(model.RunStatusPending), farmSizeHa, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.AnalysisRun{
		ID:         id,
		Status:     model.RunStatusPending,
		FarmSizeHa: farmSizeHa,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, run *model.AnalysisRun) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs
		 SET status = $1, weather_summary = $2, demo = $3, recommendation = $4, report = $5, updated_at = $6
		 WHERE id = $7`,
		string(model.RunStatusCompleted), run.WeatherSummary, run.Demo,
		nullableJSON(run.Recommendation), nullableJSON(run.Report), time.Now().UTC(), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, farm_size_ha, weather_summary, demo, recommendation, report, created_at, updated_at
		 FROM analysis_runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.AnalysisRun, error) {
	query := `SELECT id, status, farm_size_ha, weather_summary, demo, recommendation, report, created_at, updated_at
	          FROM analysis_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.AnalysisRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveDocument(ctx context.Context, filename, content string) (*model.Document, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, filename, content, uploaded_at) VALUES ($1, $2, $3, $4)`,
		id, filename, content, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert document %s", filename)
	}

	return &model.Document{ID: id, Filename: filename, Content: content, UploadedAt: now}, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, filename, content, uploaded_at FROM documents ORDER BY uploaded_at ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.Content, &d.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

// SaveParcels bulk-inserts parcels with the COPY protocol.
func (s *PostgresStore) SaveParcels(ctx context.Context, parcels []model.Parcel) error {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(parcels))
	for _, p := range parcels {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		importedAt := p.ImportedAt
		if importedAt.IsZero() {
			importedAt = now
		}
		rows = append(rows, []any{id, p.Name, p.AreaHa, p.CentroidLat, p.CentroidLon, importedAt})
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"parcels"},
		[]string{"id", "name", "area_ha", "centroid_lat", "centroid_lon", "imported_at"},
		pgx.CopyFromRows(rows),
	)
	return eris.Wrap(err, "postgres: copy parcels")
}

func (s *PostgresStore) ListParcels(ctx context.Context) ([]model.Parcel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, area_ha, centroid_lat, centroid_lon, imported_at FROM parcels ORDER BY name ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list parcels")
	}
	defer rows.Close()

	var parcels []model.Parcel
	for rows.Next() {
		var p model.Parcel
		if err := rows.Scan(&p.ID, &p.Name, &p.AreaHa, &p.CentroidLat, &p.CentroidLon, &p.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan parcel")
		}
		parcels = append(parcels, p)
	}
	return parcels, eris.Wrap(rows.Err(), "postgres: list parcels iterate")
}

func scanPgRun(row pgx.Row) (*model.AnalysisRun, error) {
	var (
		r              model.AnalysisRun
		status         string
		weatherSummary *string
		recommendation []byte
		report         []byte
	)
	err := row.Scan(&r.ID, &status, &r.FarmSizeHa, &weatherSummary, &r.Demo,
		&recommendation, &report, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	r.Status = model.RunStatus(status)
	if weatherSummary != nil {
		r.WeatherSummary = *weatherSummary
	}
	r.Recommendation = recommendation
	r.Report = report
	return &r, nil
}

