package naming

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour-sync/internal/models"
)

func classified(t *testing.T, names ...string) []ClassifiedFile {
	t.Helper()
	files, errs := ClassifyFiles("dir", names)
	require.Empty(t, errs)
	return files
}

func TestExtractNumber(t *testing.T) {
	n, ok := ExtractNumber("seq_010")
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	n, ok = ExtractNumber("frame12.jpg")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ExtractNumber("cover")
	assert.False(t, ok)
}

func TestGroupScenesOrdersSequenceNumerically(t *testing.T) {
	files := classified(t, "seq_002.jpg", "seq_001.jpg", "seq_010.jpg")

	scenes := GroupScenes(files, "negro-sport", models.AutomotiveExternal, nil)

	require.Len(t, scenes, 1)
	assert.Equal(t, models.SceneTypeSequence, scenes[0].SceneType)
	assert.Equal(t, []string{"dir/seq_001.jpg", "dir/seq_002.jpg", "dir/seq_010.jpg"}, scenes[0].Files)
	assert.Equal(t, "001", scenes[0].Name)
}

func TestGroupScenesFallsBackToLexicographicOrder(t *testing.T) {
	files := classified(t, "seq_b.jpg", "seq_a.jpg", "seq_c_1.jpg")

	scenes := GroupScenes(files, "spin", models.AutomotiveExternal, nil)

	require.Len(t, scenes, 1)
	assert.Equal(t, []string{"dir/seq_a.jpg", "dir/seq_b.jpg", "dir/seq_c_1.jpg"}, scenes[0].Files)
}

func TestGroupScenesKeepsStillsSeparate(t *testing.T) {
	color := &models.ColorRef{ID: "c1", Slug: "negro-sport"}
	files := classified(t, "2d_front.jpg", "360_cabin.jpg", "seq_a_02.png", "seq_a_01.png")

	scenes := GroupScenes(files, "negro-sport", models.AutomotiveInternal, color)

	require.Len(t, scenes, 3)
	assert.Equal(t, "Front", scenes[0].Name)
	assert.Equal(t, models.SceneType2D, scenes[0].SceneType)
	assert.Equal(t, "Cabin", scenes[1].Name)
	assert.Equal(t, models.SceneType360, scenes[1].SceneType)
	assert.Equal(t, models.SceneTypeSequence, scenes[2].SceneType)
	assert.Len(t, scenes[2].Files, 2)
	for _, s := range scenes {
		assert.Equal(t, models.AutomotiveInternal, s.AutomotiveType)
		assert.Equal(t, "c1", s.ColorID())
	}
}

func TestGroupScenesNameFallbacks(t *testing.T) {
	files := classified(t, "2d_.jpg", "seq_.jpg")

	scenes := GroupScenes(files, "negro-sport", models.AutomotiveExternal, nil)

	require.Len(t, scenes, 2)
	assert.Equal(t, "Negro Sport 2d", scenes[0].Name)
	assert.Equal(t, "Negro Sport Sequence", scenes[1].Name)
	assert.Equal(t, "", scenes[1].ColorID())
}

func TestGroupScenesEmpty(t *testing.T) {
	assert.Empty(t, GroupScenes(nil, "x", models.AutomotiveExternal, nil))
}

func TestImageFilesFiltersAndSorts(t *testing.T) {
	fs := memfs.New()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", ".hidden.jpg", "c.avif"} {
		require.NoError(t, util.WriteFile(fs, "scenes/"+name, []byte("x"), 0o644))
	}
	require.NoError(t, fs.MkdirAll("scenes/nested.jpg", 0o755))

	assert.Equal(t, []string{"a.jpg", "b.PNG", "c.avif"}, ImageFiles(fs, "scenes"))
	assert.Nil(t, ImageFiles(fs, "missing"))
	assert.Equal(t, []string{"nested.jpg"}, SubDirs(fs, "scenes"))
}
