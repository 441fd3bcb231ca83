package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirFieldAliases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "algebra.json", `[
		{"question": "Solve x = 1", "solution": "x is 1", "topic": "Algebra"},
		{"problem": "Solve y = 2", "explanation": "y is 2"},
		{"problem": "Solve z = 3", "answer": "3"}
	]`)

	records, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Solve x = 1", records[0].Question)
	assert.Equal(t, "algebra", records[0].Topic)
	assert.Equal(t, "Solve y = 2", records[1].Question)
	assert.Equal(t, "y is 2", records[1].Solution)
	assert.Equal(t, "3", records[2].Solution)
	assert.Equal(t, "algebra", records[2].Source)
}

func TestLoadDirSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `[{"question": "What is 1+1?", "solution": "2"}]`)
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "notes.txt", `ignored`)

	records, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadDirSingleObjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.json", `{"question": "What is 3*3?", "solution": "9"}`)

	records, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "What is 3*3?", records[0].Question)
	assert.NotEmpty(t, records[0].ID)
}

func TestLoadDirDropsIncompleteRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mixed.json", `[
		{"question": "complete", "solution": "yes"},
		{"question": "no solution"},
		{"solution": "no question"}
	]`)

	records, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	records := Seed()
	require.NotEmpty(t, records)
	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
		assert.NotEmpty(t, rec.Question)
		assert.NotEmpty(t, rec.Solution)
		assert.Equal(t, "builtin", rec.Source)
	}
}
