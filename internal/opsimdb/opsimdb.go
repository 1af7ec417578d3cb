// Package opsimdb reads simulated survey observation logs from a SQL
// database and groups the visits into per-field slices for the metric layer.
package opsimdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"

	_ "github.com/go-sql-driver/mysql" // register mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	_ "modernc.org/sqlite"             // register sqlite driver
)

// Store is a VisitStore over database/sql with sqlite, mysql and postgresql
// backends.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	table   string
	cols    schema.Columns
	// constraint is an optional SQL fragment restricting visits; it is
	// appended verbatim to the query, matching the trust model of the
	// reference driver (configuration, not user-facing input).
	constraint string
}

var _ contract.VisitStore = &Store{} // Compile-time check

// Open connects to the visit database configured in cfg.
func Open(cfg *contract.Config) (*Store, error) {
	var driverName string
	switch cfg.Backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
	case schema.MySQLBackend:
		driverName = "mysql"
	case schema.PostgreSQLBackend:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}

	db, err := sql.Open(driverName, cfg.DBConnect)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s visit database: %w", cfg.Backend, err)
	}
	if cfg.Backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is
		// locked" errors.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s visit database: %w", cfg.Backend, err)
	}

	return &Store{
		db:         db,
		backend:    cfg.Backend,
		table:      cfg.VisitTable,
		cols:       cfg.Columns,
		constraint: cfg.Constraint,
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchSlices loads the visit columns a metric set needs, restricted by the
// configured constraint, and groups the rows by field. Each slice is paired
// with a slice point holding the field ID and its mean sky position.
func (s *Store) FetchSlices(ctx context.Context) ([]*schema.VisitSlice, []schema.SlicePoint, error) {
	query := s.buildQuery()
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("visit query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type fieldData struct {
		mjd, night, m5, seeing, airmass, ra, dec []float64
		filter                                   []string
	}
	fields := make(map[int64]*fieldData)
	var fieldIDs []int64

	for rows.Next() {
		var fieldID int64
		var mjd, night, m5, seeing, airmass, ra, dec float64
		var filter string
		if err := rows.Scan(&fieldID, &mjd, &night, &filter, &m5, &seeing, &airmass, &ra, &dec); err != nil {
			return nil, nil, fmt.Errorf("visit scan failed: %w", err)
		}
		fd, ok := fields[fieldID]
		if !ok {
			fd = &fieldData{}
			fields[fieldID] = fd
			fieldIDs = append(fieldIDs, fieldID)
		}
		fd.mjd = append(fd.mjd, mjd)
		fd.night = append(fd.night, night)
		fd.filter = append(fd.filter, filter)
		fd.m5 = append(fd.m5, m5)
		fd.seeing = append(fd.seeing, seeing)
		fd.airmass = append(fd.airmass, airmass)
		fd.ra = append(fd.ra, ra)
		fd.dec = append(fd.dec, dec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("visit iteration failed: %w", err)
	}

	sort.Slice(fieldIDs, func(i, j int) bool { return fieldIDs[i] < fieldIDs[j] })

	slices := make([]*schema.VisitSlice, 0, len(fieldIDs))
	points := make([]schema.SlicePoint, 0, len(fieldIDs))
	for _, id := range fieldIDs {
		fd := fields[id]
		vs := schema.NewVisitSlice(len(fd.mjd))
		for col, vals := range map[string][]float64{
			s.cols.MJD:     fd.mjd,
			s.cols.Night:   fd.night,
			s.cols.M5:      fd.m5,
			s.cols.Seeing:  fd.seeing,
			s.cols.Airmass: fd.airmass,
			s.cols.RA:      fd.ra,
			s.cols.Dec:     fd.dec,
		} {
			if err := vs.SetFloats(col, vals); err != nil {
				return nil, nil, err
			}
		}
		if err := vs.SetStrings(s.cols.Filter, fd.filter); err != nil {
			return nil, nil, err
		}
		slices = append(slices, vs)
		points = append(points, schema.SlicePoint{
			schema.PointSliceID: float64(id),
			schema.PointRA:      mean(fd.ra),
			schema.PointDec:     mean(fd.dec),
		})
	}
	return slices, points, nil
}

// buildQuery assembles the column list and optional constraint into the
// visit select statement.
func (s *Store) buildQuery() string {
	columns := strings.Join([]string{
		s.cols.FieldID,
		s.cols.MJD,
		s.cols.Night,
		s.cols.Filter,
		s.cols.M5,
		s.cols.Seeing,
		s.cols.Airmass,
		s.cols.RA,
		s.cols.Dec,
	}, ", ")
	query := fmt.Sprintf("SELECT %s FROM %s", columns, s.table)
	if s.constraint != "" {
		query += " WHERE " + s.constraint
	}
	return query
}

// mean averages xs; empty inputs yield NaN.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}
