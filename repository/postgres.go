package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore persists the network in PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and verifies the connection
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool
func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates tables if they don't exist
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// CreateStation inserts a station and returns it with its new ID
func (r *PostgresStore) CreateStation(ctx context.Context, name string) (subway.Station, error) {
	st := subway.Station{Name: name}
	err := r.pool.QueryRow(ctx, `INSERT INTO stations (name) VALUES ($1) RETURNING id`, name).Scan(&st.ID)
	if err != nil {
		return subway.Station{}, fmt.Errorf("failed to insert station: %w", err)
	}
	return st, nil
}

// GetStation returns a station by ID
func (r *PostgresStore) GetStation(ctx context.Context, id int64) (subway.Station, error) {
	st := subway.Station{ID: id}
	if err := r.pool.QueryRow(ctx, `SELECT name FROM stations WHERE id = $1`, id).Scan(&st.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subway.Station{}, fmt.Errorf("station %d: %w", id, subway.ErrNotFound)
		}
		return subway.Station{}, fmt.Errorf("failed to query station: %w", err)
	}
	return st, nil
}

// ListStations returns all stations ordered by ID
func (r *PostgresStore) ListStations(ctx context.Context) ([]subway.Station, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM stations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := []subway.Station{}
	for rows.Next() {
		var st subway.Station
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}
	return stations, nil
}

// DeleteStation removes a station
func (r *PostgresStore) DeleteStation(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}
	return expectTag(tag, "station", id)
}

// StationInUse reports whether any segment references the station
func (r *PostgresStore) StationInUse(ctx context.Context, id int64) (bool, error) {
	var inUse bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM segments WHERE up_station_id = $1 OR down_station_id = $1)`, id,
	).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check station segments: %w", err)
	}
	return inUse, nil
}

// CreateLine inserts a line and its segments, then assigns the new ID to line
func (r *PostgresStore) CreateLine(ctx context.Context, line *subway.Line) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO lines (name, color) VALUES ($1, $2) RETURNING id`, line.Name, line.Color,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}

		line.AssignID(id)
		return insertSegmentsPostgres(ctx, tx, id, line.Segments.Segments())
	})
}

// GetLine returns a line with its segments
func (r *PostgresStore) GetLine(ctx context.Context, id int64) (*subway.Line, error) {
	line := &subway.Line{ID: id}
	err := r.pool.QueryRow(ctx, `SELECT name, color FROM lines WHERE id = $1`, id).Scan(&line.Name, &line.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("line %d: %w", id, subway.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query line: %w", err)
	}

	segments, err := r.querySegments(ctx, `WHERE sg.line_id = $1`, id)
	if err != nil {
		return nil, err
	}
	line.Segments, err = subway.Restore(id, segments[id])
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", id, err)
	}
	return line, nil
}

// ListLines returns all lines with their segments
func (r *PostgresStore) ListLines(ctx context.Context) ([]*subway.Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color FROM lines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}

	lines := []*subway.Line{}
	for rows.Next() {
		line := &subway.Line{}
		if err := rows.Scan(&line.ID, &line.Name, &line.Color); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}

	segments, err := r.querySegments(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		line.Segments, err = subway.Restore(line.ID, segments[line.ID])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.ID, err)
		}
	}
	return lines, nil
}

// UpdateLine changes a line's name and color
func (r *PostgresStore) UpdateLine(ctx context.Context, id int64, name, color string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE lines SET name = $1, color = $2 WHERE id = $3`, name, color, id)
	if err != nil {
		return fmt.Errorf("failed to update line: %w", err)
	}
	return expectTag(tag, "line", id)
}

// DeleteLine removes a line; its segments go with it through ON DELETE CASCADE
func (r *PostgresStore) DeleteLine(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}
	return expectTag(tag, "line", id)
}

// ReplaceSegments rewrites all segments of a line in travel order
func (r *PostgresStore) ReplaceSegments(ctx context.Context, lineID int64, segments []subway.Segment) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM segments WHERE line_id = $1`, lineID); err != nil {
			return fmt.Errorf("failed to clear segments: %w", err)
		}
		return insertSegmentsPostgres(ctx, tx, lineID, segments)
	})
}

func insertSegmentsPostgres(ctx context.Context, tx pgx.Tx, lineID int64, segments []subway.Segment) error {
	batch := &pgx.Batch{}
	for i, seg := range segments {
		batch.Queue(`
			INSERT INTO segments (id, line_id, position, up_station_id, down_station_id, distance)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, seg.ID, lineID, i, seg.Up.ID, seg.Down.ID, seg.Distance)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert segments: %w", err)
	}
	return nil
}

// querySegments loads segments grouped by line ID, each group in travel order
func (r *PostgresStore) querySegments(ctx context.Context, where string, args ...interface{}) (map[int64][]subway.Segment, error) {
	query := `
		SELECT
			sg.id,
			sg.line_id,
			sg.distance,
			us.id, us.name,
			ds.id, ds.name
		FROM segments sg
		JOIN stations us ON us.id = sg.up_station_id
		JOIN stations ds ON ds.id = sg.down_station_id
		` + where + `
		ORDER BY sg.line_id, sg.position
	`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := make(map[int64][]subway.Segment)
	for rows.Next() {
		var seg subway.Segment
		if err := rows.Scan(
			&seg.ID,
			&seg.LineID,
			&seg.Distance,
			&seg.Up.ID, &seg.Up.Name,
			&seg.Down.ID, &seg.Down.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan segment row: %w", err)
		}
		segments[seg.LineID] = append(segments[seg.LineID], seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment rows: %w", err)
	}
	return segments, nil
}

func expectTag(tag pgconn.CommandTag, kind string, id int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, subway.ErrNotFound)
	}
	return nil
}
