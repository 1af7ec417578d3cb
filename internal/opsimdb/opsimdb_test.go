package opsimdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/huangsam/skymetrics/internal/contract"
	"github.com/huangsam/skymetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedVisitDB creates a SQLite visit database with the reference schema and
// a few visits across two fields.
func seedVisitDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opsim.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(`CREATE TABLE summary (
		fieldID INTEGER,
		expMJD REAL,
		night REAL,
		filter TEXT,
		fiveSigmaDepth REAL,
		finSeeing REAL,
		airmass REAL,
		fieldRA REAL,
		fieldDec REAL
	)`)
	require.NoError(t, err)

	visits := []struct {
		fieldID             int64
		mjd, night          float64
		filter              string
		m5, seeing, airmass float64
		ra, dec             float64
	}{
		{2, 59001.0, 1, "g", 24.5, 0.7, 1.1, 30.0, -10.0},
		{2, 59001.1, 1, "r", 24.2, 0.8, 1.2, 30.2, -10.2},
		{1, 59002.0, 2, "g", 24.8, 0.6, 1.0, 10.0, -20.0},
		{2, 59003.0, 3, "i", 23.9, 0.9, 1.3, 30.1, -10.1},
	}
	for _, v := range visits {
		_, err = db.Exec(
			"INSERT INTO summary VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			v.fieldID, v.mjd, v.night, v.filter, v.m5, v.seeing, v.airmass, v.ra, v.dec)
		require.NoError(t, err)
	}
	return path
}

// visitConfig returns a run configuration pointing at a visit database.
func visitConfig(path string) *contract.Config {
	return &contract.Config{
		DBConnect:  path,
		Backend:    schema.SQLiteBackend,
		VisitTable: contract.DefaultVisitTable,
		Columns:    schema.DefaultColumns(),
	}
}

// TestFetchSlices checks visit grouping by field and the per-field points.
func TestFetchSlices(t *testing.T) {
	store, err := Open(visitConfig(seedVisitDB(t)))
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	slices, points, err := store.FetchSlices(context.Background())
	require.NoError(t, err)
	require.Len(t, slices, 2)
	require.Len(t, points, 2)

	// Fields come back in ascending field ID order.
	assert.InDelta(t, 1.0, points[0][schema.PointSliceID], 1e-12)
	assert.InDelta(t, 2.0, points[1][schema.PointSliceID], 1e-12)

	cols := schema.DefaultColumns()
	assert.Equal(t, 1, slices[0].Len())
	assert.Equal(t, []float64{59002.0}, slices[0].Floats(cols.MJD))
	assert.Equal(t, []string{"g"}, slices[0].Strings(cols.Filter))

	assert.Equal(t, 3, slices[1].Len())
	assert.Equal(t, []float64{59001.0, 59001.1, 59003.0}, slices[1].Floats(cols.MJD))
	assert.Equal(t, []string{"g", "r", "i"}, slices[1].Strings(cols.Filter))
	assert.Equal(t, []float64{24.5, 24.2, 23.9}, slices[1].Floats(cols.M5))

	// Points carry the mean field position.
	assert.InDelta(t, 10.0, points[0][schema.PointRA], 1e-9)
	assert.InDelta(t, -20.0, points[0][schema.PointDec], 1e-9)
	assert.InDelta(t, 30.1, points[1][schema.PointRA], 1e-9)
	assert.InDelta(t, -10.1, points[1][schema.PointDec], 1e-9)
}

// TestFetchSlicesConstraint restricts visits with a SQL fragment.
func TestFetchSlicesConstraint(t *testing.T) {
	cfg := visitConfig(seedVisitDB(t))
	cfg.Constraint = fmt.Sprintf("%s = 'g'", schema.DefaultColumns().Filter)
	store, err := Open(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	slices, points, err := store.FetchSlices(context.Background())
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, 1, slices[0].Len())
	assert.Equal(t, 1, slices[1].Len())
	assert.InDelta(t, 2.0, points[1][schema.PointSliceID], 1e-12)
}

// TestFetchSlicesEmpty returns no slices for an empty table.
func TestFetchSlicesEmpty(t *testing.T) {
	cfg := visitConfig(seedVisitDB(t))
	cfg.Constraint = "night > 100"
	store, err := Open(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	slices, points, err := store.FetchSlices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slices)
	assert.Empty(t, points)
}

// TestOpenUnsupportedBackend rejects unknown backends.
func TestOpenUnsupportedBackend(t *testing.T) {
	cfg := visitConfig("opsim.db")
	cfg.Backend = schema.NoneBackend
	_, err := Open(cfg)
	assert.Error(t, err)
}

// TestBuildQuery checks column ordering and the optional constraint clause.
func TestBuildQuery(t *testing.T) {
	s := &Store{table: "summary", cols: schema.DefaultColumns()}
	assert.Equal(t,
		"SELECT fieldID, expMJD, night, filter, fiveSigmaDepth, finSeeing, airmass, fieldRA, fieldDec FROM summary",
		s.buildQuery())

	s.constraint = "night < 365"
	assert.Equal(t,
		"SELECT fieldID, expMJD, night, filter, fiveSigmaDepth, finSeeing, airmass, fieldRA, fieldDec FROM summary WHERE night < 365",
		s.buildQuery())
}
