package extraction

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("tours.zip"))
	assert.True(t, IsArchive("/tmp/Tours.TAR.GZ"))
	assert.True(t, IsArchive("backup.rar"))
	assert.False(t, IsArchive("tours"))
	assert.False(t, IsArchive("front.png"))
}

func TestCreateAndExtractArchive(t *testing.T) {
	src := filepath.Join(t.TempDir(), "model-x")
	writeTree(t, src, map[string]string{
		"_config.json":                     `{"eventType":"Automotive"}`,
		"external/rojo/2d_front.jpg":       "front",
		"_colors/external/rojo.png":        "swatch",
		"__MACOSX/external/._2d_front.jpg": "junk",
	})
	archive := filepath.Join(t.TempDir(), "model-x.zip")

	require.NoError(t, CreateArchive(context.Background(), src, archive))

	files, dest, err := ExtractArchive(context.Background(), archive)
	require.NoError(t, err)
	defer os.RemoveAll(dest)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(dest, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	sort.Strings(rel)
	assert.Equal(t, []string{
		"model-x/_colors/external/rojo.png",
		"model-x/_config.json",
		"model-x/external/rojo/2d_front.jpg",
	}, rel)

	data, err := os.ReadFile(filepath.Join(dest, "model-x", "external", "rojo", "2d_front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "front", string(data))
}

func TestExtractArchiveMissingFile(t *testing.T) {
	_, _, err := ExtractArchive(context.Background(), filepath.Join(t.TempDir(), "nope.zip"))
	assert.Error(t, err)
}

func TestSourceRoot(t *testing.T) {
	isTour := func(dir string) bool {
		_, err := os.Stat(filepath.Join(dir, "_config.json"))
		return err == nil
	}

	wrapped := t.TempDir()
	writeTree(t, wrapped, map[string]string{"export/a/_config.json": "{}", "export/b/_config.json": "{}"})
	assert.Equal(t, filepath.Join(wrapped, "export"), SourceRoot(wrapped, isTour))

	single := t.TempDir()
	writeTree(t, single, map[string]string{"a/_config.json": "{}"})
	assert.Equal(t, single, SourceRoot(single, isTour))

	flat := t.TempDir()
	writeTree(t, flat, map[string]string{"a/x.png": "", "b/y.png": ""})
	assert.Equal(t, flat, SourceRoot(flat, isTour))
}
