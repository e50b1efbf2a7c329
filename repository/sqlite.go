package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mini-rodalies-3d/subway/internal/subway"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore persists the network in a SQLite database
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // SQLite allows one writer; serialize write transactions
}

// NewSQLiteStore opens a SQLite database with WAL mode and foreign keys enabled
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates tables if they don't exist
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateStation inserts a station and returns it with its new ID
func (s *SQLiteStore) CreateStation(ctx context.Context, name string) (subway.Station, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO stations (name) VALUES (?)`, name)
	if err != nil {
		return subway.Station{}, fmt.Errorf("failed to insert station: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return subway.Station{}, fmt.Errorf("failed to read station id: %w", err)
	}
	return subway.Station{ID: id, Name: name}, nil
}

// GetStation returns a station by ID
func (s *SQLiteStore) GetStation(ctx context.Context, id int64) (subway.Station, error) {
	st := subway.Station{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT name FROM stations WHERE id = ?`, id).Scan(&st.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return subway.Station{}, fmt.Errorf("station %d: %w", id, subway.ErrNotFound)
		}
		return subway.Station{}, fmt.Errorf("failed to query station: %w", err)
	}
	return st, nil
}

// ListStations returns all stations ordered by ID
func (s *SQLiteStore) ListStations(ctx context.Context) ([]subway.Station, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM stations ORDER BY id`)
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
func (s *SQLiteStore) DeleteStation(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}
	return expectAffected(res, "station", id)
}

// StationInUse reports whether any segment references the station
func (s *SQLiteStore) StationInUse(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM segments WHERE up_station_id = ? OR down_station_id = ?`, id, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count station segments: %w", err)
	}
	return n > 0, nil
}

// CreateLine inserts a line and its segments, then assigns the new ID to line
func (s *SQLiteStore) CreateLine(ctx context.Context, line *subway.Line) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO lines (name, color) VALUES (?, ?)`, line.Name, line.Color)
	if err != nil {
		return fmt.Errorf("failed to insert line: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read line id: %w", err)
	}

	line.AssignID(id)
	if err := insertSegmentsSQLite(ctx, tx, id, line.Segments.Segments()); err != nil {
		return err
	}
	return tx.Commit()
}

// GetLine returns a line with its segments
func (s *SQLiteStore) GetLine(ctx context.Context, id int64) (*subway.Line, error) {
	line := &subway.Line{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT name, color FROM lines WHERE id = ?`, id).Scan(&line.Name, &line.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("line %d: %w", id, subway.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query line: %w", err)
	}

	segments, err := s.querySegments(ctx, `WHERE sg.line_id = ?`, id)
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
func (s *SQLiteStore) ListLines(ctx context.Context) ([]*subway.Line, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM lines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	lines := []*subway.Line{}
	for rows.Next() {
		line := &subway.Line{}
		if err := rows.Scan(&line.ID, &line.Name, &line.Color); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}

	segments, err := s.querySegments(ctx, "")
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
func (s *SQLiteStore) UpdateLine(ctx context.Context, id int64, name, color string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE lines SET name = ?, color = ? WHERE id = ?`, name, color, id)
	if err != nil {
		return fmt.Errorf("failed to update line: %w", err)
	}
	return expectAffected(res, "line", id)
}

// DeleteLine removes a line and its segments
func (s *SQLiteStore) DeleteLine(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE line_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete segments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}
	if err := expectAffected(res, "line", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSegments rewrites all segments of a line in travel order
func (s *SQLiteStore) ReplaceSegments(ctx context.Context, lineID int64, segments []subway.Segment) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE line_id = ?`, lineID); err != nil {
		return fmt.Errorf("failed to clear segments: %w", err)
	}
	if err := insertSegmentsSQLite(ctx, tx, lineID, segments); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSegmentsSQLite(ctx context.Context, tx *sql.Tx, lineID int64, segments []subway.Segment) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (id, line_id, position, up_station_id, down_station_id, distance)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for i, seg := range segments {
		if _, err := stmt.ExecContext(ctx, seg.ID.String(), lineID, i, seg.Up.ID, seg.Down.ID, seg.Distance); err != nil {
			return fmt.Errorf("failed to insert segment %s: %w", seg.ID, err)
		}
	}
	return nil
}

// querySegments loads segments grouped by line ID, each group in travel order
func (s *SQLiteStore) querySegments(ctx context.Context, where string, args ...interface{}) (map[int64][]subway.Segment, error) {
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

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := make(map[int64][]subway.Segment)
	for rows.Next() {
		var seg subway.Segment
		var idStr string
		if err := rows.Scan(
			&idStr,
			&seg.LineID,
			&seg.Distance,
			&seg.Up.ID, &seg.Up.Name,
			&seg.Down.ID, &seg.Down.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan segment row: %w", err)
		}
		seg.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid segment id %q: %w", idStr, err)
		}
		segments[seg.LineID] = append(segments[seg.LineID], seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segment rows: %w", err)
	}
	return segments, nil
}

func expectAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, subway.ErrNotFound)
	}
	return nil
}
