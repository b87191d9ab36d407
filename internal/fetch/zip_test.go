package fetch

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasValidZip(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, map[string]string{"Unihan_Readings.txt": sampleReadings})
	assert.True(t, HasValidZip(path))

	notZip := filepath.Join(dir, "not.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0o644))
	assert.False(t, HasValidZip(notZip))

	assert.False(t, HasValidZip(filepath.Join(dir, "missing.zip")))
	assert.False(t, HasValidZip(dir))
}

func TestZipHasFiles(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{"Unihan_Readings.txt": sampleReadings})

	ok, err := ZipHasFiles(path, []string{"Unihan_Readings.txt"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ZipHasFiles(path, []string{"Unihan_Cats.txt"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ZipHasFiles(filepath.Join(t.TempDir(), "missing.zip"), nil)
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{
		"Unihan_Readings.txt": sampleReadings,
		"Unihan_Variants.txt": "U+4E00\tkZVariant\tU+5F0C\n",
	})
	dest := t.TempDir()

	written, err := Extract(path, dest, []string{"Unihan_Readings.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unihan_Readings.txt"}, written)

	data, err := os.ReadFile(filepath.Join(dest, "Unihan_Readings.txt"))
	require.NoError(t, err)
	assert.Equal(t, sampleReadings, string(data))
	assert.NoFileExists(t, filepath.Join(dest, "Unihan_Variants.txt"))

	assert.True(t, FilesExist(dest, []string{"Unihan_Readings.txt"}))
	assert.False(t, FilesExist(dest, []string{"Unihan_Readings.txt", "Unihan_Variants.txt"}))
}

func TestExtract_All(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{
		"Unihan_Readings.txt": sampleReadings,
		"Unihan_Variants.txt": "U+4E00\tkZVariant\tU+5F0C\n",
	})
	dest := t.TempDir()

	written, err := Extract(path, dest, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Unihan_Readings.txt", "Unihan_Variants.txt"}, written)
}

func TestExtract_MissingEntry(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{"Unihan_Readings.txt": sampleReadings})
	_, err := Extract(path, t.TempDir(), []string{"Unihan_Readings.txt", "Unihan_Cats.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unihan_Cats.txt")
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{"../evil.txt": "x"})
	dest := t.TempDir()
	_, err := Extract(path, dest, nil)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil.txt"))
}

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B"), 0o644))

	readers, closeAll, err := OpenFiles(dir, []string{"a.txt", "b.txt"})
	require.NoError(t, err)
	defer closeAll()

	var got []string
	for _, r := range readers {
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		got = append(got, string(b))
	}
	assert.Equal(t, []string{"A", "B"}, got)

	_, _, err = OpenFiles(dir, []string{"a.txt", "missing.txt"})
	assert.Error(t, err)
}
