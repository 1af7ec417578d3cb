package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPlainLabel tests plain labels for both row states.
func TestGetPlainLabel(t *testing.T) {
	assert.Equal(t, BadLabel, GetPlainLabel(true))
	assert.Equal(t, OKLabel, GetPlainLabel(false))
}

// TestGetColorLabel ensures colored labels still carry the plain text.
func TestGetColorLabel(t *testing.T) {
	assert.Contains(t, GetColorLabel(true), BadLabel)
	assert.Contains(t, GetColorLabel(false), OKLabel)
}

// TestFormatFloat tests precision rendering.
func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.50", FormatFloat(1.5, 2))
	assert.Equal(t, "2", FormatFloat(1.5, 0))
	assert.Equal(t, "-666.000", FormatFloat(-666.0, 3))
}

// TestSelectOutputFile tests stdout fallback and file creation.
func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Same(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.NoError(t, f.Close())
	assert.FileExists(t, path)

	_, err = SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.txt"))
	assert.Error(t, err)
}

// TestGetResultsDBFilePath checks the file name of the run tracking DB.
func TestGetResultsDBFilePath(t *testing.T) {
	path := GetResultsDBFilePath()
	assert.True(t, strings.HasSuffix(path, ".skymetrics_results.db"))
}
