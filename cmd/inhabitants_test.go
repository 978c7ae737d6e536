package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderIndex(t *testing.T) {
	rows := [][]string{
		{"id", " Lon", "LAT", "inhabitants"},
		{"c1", "10.0", "52.0", "123"},
	}

	idx, err := headerIndex(rows, "inhabitants", "lon", "lat")
	require.NoError(t, err)
	assert.Equal(t, 1, idx["lon"])
	assert.Equal(t, 2, idx["lat"])
	assert.Equal(t, 3, idx["inhabitants"])
}

func TestHeaderIndexMissingColumn(t *testing.T) {
	rows := [][]string{{"id", "lon", "lat"}}

	_, err := headerIndex(rows, "inhabitants", "lon", "lat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inhabitants")
}

func TestHeaderIndexEmptyTable(t *testing.T) {
	_, err := headerIndex(nil, "lon")
	assert.Error(t, err)
}

func TestParsePopulationCells(t *testing.T) {
	rows := [][]string{
		{"id", "lon", "lat", "inhabitants"},
		{"c1", "10.0", "52.0", "1200"},
		{"c2", "10.1", "52.0", "430"},
	}

	cells, err := parsePopulationCells(rows, "inhabitants")
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "c1", cells[0].ID)
	assert.InDelta(t, 1200, cells[0].Inhabitants, 0.001)
	assert.InDelta(t, 10.1, cells[1].Lon, 0.001)
}

func TestParsePopulationCellsMalformedNumber(t *testing.T) {
	rows := [][]string{
		{"id", "lon", "lat", "inhabitants"},
		{"c1", "10.0", "52.0", "n/a"},
	}

	_, err := parsePopulationCells(rows, "inhabitants")
	assert.Error(t, err)
}

func TestParsePopulationCellsShortRow(t *testing.T) {
	rows := [][]string{
		{"id", "lon", "lat", "inhabitants"},
		{"c1", "10.0"},
		{},
	}

	_, err := parsePopulationCells(rows, "inhabitants")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c1")
}

func TestFieldShortRow(t *testing.T) {
	row := []string{"a", " b "}
	assert.Equal(t, "a", field(row, 0))
	assert.Equal(t, "b", field(row, 1))
	assert.Equal(t, "", field(row, 2))
}

func TestReportRegionValuesWritesCSV(t *testing.T) {
	byRegion := map[string]float64{
		"SH":      1200,
		"NI":      430,
		"unknown": 7,
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, reportRegionValues(byRegion, "INHABITANTS", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Sorted regions, unknown bucket last.
	want := "region,inhabitants\n" +
		"NI,430\n" +
		"SH,1200\n" +
		"unknown,7\n"
	assert.Equal(t, want, string(data))
}
