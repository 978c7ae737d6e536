package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCellValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,value\nw1,5.5\nw2,6\n"), 0644))

	values, err := loadCellValues(path, "value", false)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, values["w1"], 0.001)
	assert.InDelta(t, 6, values["w2"], 0.001)
}

func TestLoadCellValuesShortRow(t *testing.T) {
	// Ragged rows pass the CSV reader; they must surface as a value
	// error, never an index panic.
	path := filepath.Join(t.TempDir(), "values.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,value\nw1,5.5\nw2\n"), 0644))

	_, err := loadCellValues(path, "value", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "w2")
}
