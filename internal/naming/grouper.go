package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"tour-sync/internal/models"
)

var frameNumberPattern = regexp.MustCompile(`(\d+)(?:\.\w+)?$`)

// ExtractNumber returns the trailing integer of a name, if any.
func ExtractNumber(name string) (int, bool) {
	m := frameNumberPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortFrames orders sequence frames by their trailing number, falling back to the
// original name when a number is missing or equal.
func SortFrames(files []ClassifiedFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, okA := ExtractNumber(files[i].OriginalName)
		b, okB := ExtractNumber(files[j].OriginalName)
		if okA && okB && a != b {
			return a < b
		}
		return files[i].OriginalName < files[j].OriginalName
	})
}

// GroupScenes turns the classified files of one folder into scene specs. Each 2d and
// 360 file becomes its own scene; all sequence frames merge into a single scene that
// comes last. label names the folder and is used when a file yields no scene name.
func GroupScenes(files []ClassifiedFile, label string, automotiveType models.AutomotiveType, color *models.ColorRef) []models.SceneSpec {
	var (
		scenes []models.SceneSpec
		frames []ClassifiedFile
	)
	for _, f := range files {
		if f.SceneType == models.SceneTypeSequence {
			frames = append(frames, f)
			continue
		}
		name := f.SceneName
		if name == "" {
			name = fmt.Sprintf("%s %s", SlugToName(label), f.SceneType)
		}
		scenes = append(scenes, models.SceneSpec{
			Name:           name,
			SceneType:      f.SceneType,
			AutomotiveType: automotiveType,
			Color:          color,
			Files:          []string{f.Path},
		})
	}
	if len(frames) == 0 {
		return scenes
	}

	SortFrames(frames)
	name := frames[0].SceneName
	if name == "" {
		name = SlugToName(label) + " Sequence"
	}
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		paths = append(paths, f.Path)
	}
	return append(scenes, models.SceneSpec{
		Name:           name,
		SceneType:      models.SceneTypeSequence,
		AutomotiveType: automotiveType,
		Color:          color,
		Files:          paths,
	})
}
