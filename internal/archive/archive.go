// Package archive persists completed pipeline runs in a SQLite database so
// past runs can be listed and their exported tables recovered. The archive
// is an optional consumer of the core report; the pipeline never depends on
// it.
package archive

import (
	"bytes"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ebsd-data/linescan.report/internal/linescan"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Archive is a handle to a run archive database.
type Archive struct {
	db *sql.DB
}

// Run is one archived pipeline run. Optional statistics are nil where the
// run left them undefined.
type Run struct {
	ID               string
	CreatedAt        time.Time
	QuantizationStep float64
	TrimPolicy       string
	BaselineWindow   float64
	ScanCount        int
	AxisPoints       int
	TrimLimit        *float64
	BaselineMean     *float64
	BaselineStd      *float64
	Threshold        *float64
	Recovery         *float64
	TableCSV         string
}

// Open opens (creating if necessary) the archive at path and applies any
// pending schema migrations.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	a := &Archive{db: db}
	if err := a.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// migrateUp applies the embedded migrations up to the latest version.
func (a *Archive) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(a.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}
	// Not closing m: that would close the shared DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SaveRun archives a completed report and returns the new run ID.
func (a *Archive) SaveRun(rep *linescan.Report) (string, error) {
	var buf bytes.Buffer
	if err := rep.Table.WriteCSV(&buf); err != nil {
		return "", fmt.Errorf("serialise run table: %w", err)
	}

	id := uuid.NewString()
	_, err := a.db.Exec(`
		INSERT INTO runs (
			run_id, quantization_step, trim_policy, baseline_window,
			scan_count, axis_points, trim_limit, baseline_mean, baseline_std,
			threshold, recovery_distance, table_csv
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rep.Config.Step, rep.Config.Trim.String(), rep.Config.BaselineWindow,
		len(rep.Table.Scans), rep.Table.Axis.Len(),
		toNull(rep.TrimLimit), toNull(rep.Deformation.BaselineMean),
		toNull(rep.Deformation.BaselineStd), toNull(rep.Deformation.Threshold),
		toNull(rep.Deformation.Recovery), buf.String(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// GetRun fetches one archived run by ID.
func (a *Archive) GetRun(id string) (*Run, error) {
	row := a.db.QueryRow(`
		SELECT run_id, created_at, quantization_step, trim_policy,
		       baseline_window, scan_count, axis_points, trim_limit,
		       baseline_mean, baseline_std, threshold, recovery_distance,
		       table_csv
		FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit archived runs, newest first.
func (a *Archive) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Query(`
		SELECT run_id, created_at, quantization_step, trim_policy,
		       baseline_window, scan_count, axis_points, trim_limit,
		       baseline_mean, baseline_std, threshold, recovery_distance,
		       table_csv
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for scanRun.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r                                           Run
		trimLimit, bMean, bStd, threshold, recovery sql.NullFloat64
	)
	err := row.Scan(&r.ID, &r.CreatedAt, &r.QuantizationStep, &r.TrimPolicy,
		&r.BaselineWindow, &r.ScanCount, &r.AxisPoints, &trimLimit,
		&bMean, &bStd, &threshold, &recovery, &r.TableCSV)
	if err != nil {
		return nil, err
	}
	r.TrimLimit = fromNull(trimLimit)
	r.BaselineMean = fromNull(bMean)
	r.BaselineStd = fromNull(bStd)
	r.Threshold = fromNull(threshold)
	r.Recovery = fromNull(recovery)
	return &r, nil
}

func toNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
