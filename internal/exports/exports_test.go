// SPDX-License-Identifier: AGPL-3.0-only
package exports

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/softpaws/postharvest/internal/record"
)

func sampleRecords() record.Collection {
	return record.Collection{
		{
			ID: "1", Source: "chan", Network: "Telegram",
			Date: "2024-03-01T10:00:00Z", Text: "hello, \"world\"",
			Views: 100, Forwards: 2, Replies: 5,
			URL: "https://t.me/chan/1", HasMedia: true,
			MediaURLs: []string{"https://a/1.jpg", "https://a/2.jpg"},
		},
		{
			ID: "2", Source: "chan", Network: "Telegram",
			Date: "2024-03-02T10:00:00Z", Text: "plain",
			MediaURLs: []string{},
		},
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(sampleRecords(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, record.Columns, rows[0])
	assert.Equal(t, "hello, \"world\"", rows[1][4])
	assert.Equal(t, "https://a/1.jpg | https://a/2.jpg", rows[1][10])
	assert.Equal(t, "true", rows[1][9])
	assert.Equal(t, "false", rows[2][9])
}

func TestWriteCSVIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	require.NoError(t, WriteCSV(sampleRecords(), a))
	require.NoError(t, WriteCSV(sampleRecords(), b))

	first, err := os.ReadFile(a)
	require.NoError(t, err)
	second, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(sampleRecords(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back record.Collection
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, sampleRecords(), back)
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(sampleRecords(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteAllIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")

	// An unwritable destination fails that format only.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, nil, 0o644))
	csvPath := filepath.Join(blocked, "sub", "out.csv")

	failures := WriteAll(sampleRecords(), Request{
		CSVPath:  csvPath,
		JSONPath: jsonPath,
	}, zap.NewNop().Sugar())

	require.Len(t, failures, 1)
	var exportErr *ExportError
	require.ErrorAs(t, failures[0], &exportErr)
	assert.Equal(t, "csv", exportErr.Format)

	_, err := os.Stat(jsonPath)
	assert.NoError(t, err)
}

func TestAtomicWriteLeavesNoTempOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	err := atomicWrite(path, func(f *os.File) error {
		return os.ErrInvalid
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
