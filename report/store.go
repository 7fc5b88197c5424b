package report

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite database of tracking runs and their per frame results
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenStore opens the database at path, creating it and migrating the schema
// to the latest version as needed
func OpenStore(path string, logger *slog.Logger) (*Store, error) {

	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// a single connection keeps in memory databases shared and serialises
	// writers
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrateUp(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// migrateUp runs all pending migrations
func (s *Store) migrateUp() error {

	source, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return fmt.Errorf("error reading migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})

	if err != nil {
		return fmt.Errorf("error creating sqlite migrate driver: %w", err)
	}

	// not closed as that would close the database connection
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)

	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	m.Log = &migrateLogger{logger: s.logger}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	return nil
}

// migrateLogger implements migrate.Logger on slog
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "migrate")
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Close the database
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a new tracking run of the given video source
func (s *Store) BeginRun(ctx context.Context, source string) (*Run, error) {

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, source) VALUES (?, ?)`, id, source)

	if err != nil {
		return nil, fmt.Errorf("error recording run: %w", err)
	}

	s.logger.Info("run started", "run_id", id, "source", source)

	return &Run{
		ID:    id,
		store: s,
	}, nil
}

// RunInfo describes a recorded run
type RunInfo struct {
	ID         string
	Source     string
	Frames     int
	Detections int
	Tracks     int
	Finished   bool
}

// Runs returns all recorded runs in the order started
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source, frames, detections, tracks, finished_at IS NOT NULL
		FROM runs ORDER BY started_at, rowid`)

	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}

	defer rows.Close()

	runs := make([]RunInfo, 0)

	for rows.Next() {
		var r RunInfo

		if err := rows.Scan(&r.ID, &r.Source, &r.Frames, &r.Detections,
			&r.Tracks, &r.Finished); err != nil {
			return nil, fmt.Errorf("error reading run: %w", err)
		}

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// TrackSummary aggregates the rows of one face track of a run
type TrackSummary struct {
	FaceID     int
	FirstFrame int
	LastFrame  int
	Frames     int
	// Detections is the number of frames the face was detected on
	Detections  int
	MeanQuality float64
}

// TrackSummaries returns a summary per face id of a run, ordered by face id
func (s *Store) TrackSummaries(ctx context.Context, runID string) ([]TrackSummary, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT face_id, MIN(frame), MAX(frame), COUNT(*),
			COUNT(face_detect_conf), AVG(face_track_conf)
		FROM face_tracks
		WHERE run_id = ?
		GROUP BY face_id
		ORDER BY face_id`, runID)

	if err != nil {
		return nil, fmt.Errorf("error querying track summaries: %w", err)
	}

	defer rows.Close()

	sums := make([]TrackSummary, 0)

	for rows.Next() {
		var t TrackSummary

		if err := rows.Scan(&t.FaceID, &t.FirstFrame, &t.LastFrame, &t.Frames,
			&t.Detections, &t.MeanQuality); err != nil {
			return nil, fmt.Errorf("error reading track summary: %w", err)
		}

		sums = append(sums, t)
	}

	return sums, rows.Err()
}

// FrameRows returns the rows recorded for a frame of a run
func (s *Store) FrameRows(ctx context.Context, runID string, frame int) ([]Row, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, time_ms, box_left, box_top, box_right, box_bottom, face_id,
			face_detect_conf, face_track_conf
		FROM face_tracks
		WHERE run_id = ? AND frame = ?
		ORDER BY face_id`, runID, frame)

	if err != nil {
		return nil, fmt.Errorf("error querying frame rows: %w", err)
	}

	defer rows.Close()

	out := make([]Row, 0)

	for rows.Next() {
		var (
			r       Row
			detConf sql.NullFloat64
		)

		if err := rows.Scan(&r.Frame, &r.TimeMs, &r.Box.Left, &r.Box.Top,
			&r.Box.Right, &r.Box.Bottom, &r.FaceID, &detConf,
			&r.TrackConf); err != nil {
			return nil, fmt.Errorf("error reading frame row: %w", err)
		}

		if detConf.Valid {
			v := float32(detConf.Float64)
			r.DetectConf = &v
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

// Run is a Sink writing the rows of one tracking run to the store
type Run struct {
	ID    string
	store *Store
}

// WriteRows stores the rows in a single transaction
func (r *Run) WriteRows(ctx context.Context, rows []Row) error {

	if len(rows) == 0 {
		return nil
	}

	tx, err := r.store.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO face_tracks (run_id, frame, time_ms, box_left, box_top,
			box_right, box_bottom, face_id, face_detect_conf, face_track_conf)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("error preparing insert: %w", err)
	}

	defer stmt.Close()

	for _, row := range rows {

		var detConf interface{}

		if row.DetectConf != nil {
			detConf = float64(*row.DetectConf)
		}

		_, err := stmt.ExecContext(ctx, r.ID, row.Frame, row.TimeMs,
			row.Box.Left, row.Box.Top, row.Box.Right, row.Box.Bottom,
			row.FaceID, detConf, row.TrackConf)

		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("error inserting row: %w", err)
		}
	}

	return tx.Commit()
}

// Finish records the totals of the run
func (r *Run) Finish(ctx context.Context, frames, detections, tracks int) error {

	_, err := r.store.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = CURRENT_TIMESTAMP, frames = ?,
			detections = ?, tracks = ?
		WHERE run_id = ?`, frames, detections, tracks, r.ID)

	if err != nil {
		return fmt.Errorf("error finishing run: %w", err)
	}

	return nil
}

// Close does nothing, the store is closed by its owner
func (r *Run) Close() error {
	return nil
}
