package naming

import (
	"regexp"
	"strings"

	"tour-sync/internal/models"
)

// Classification is the scene information derived from one media filename.
type Classification struct {
	SceneType    models.SceneType
	SceneName    string
	OriginalName string
	Prefix       string
	AutoDetected bool
}

// ClassifiedFile pairs a file path with its classification.
type ClassifiedFile struct {
	Path string
	Classification
}

type prefixRule struct {
	prefix    string
	sceneType models.SceneType
}

// Order matters: the first matching prefix wins.
var prefixRules = []prefixRule{
	{prefix: "2d_", sceneType: models.SceneType2D},
	{prefix: "360_", sceneType: models.SceneType360},
	{prefix: "seq_", sceneType: models.SceneTypeSequence},
}

var (
	numericTailPattern  = regexp.MustCompile(`_\d{1,3}$`)
	sequenceTailPattern = regexp.MustCompile(`[_-]?\d{2,}$`)
	sequenceWordPattern = regexp.MustCompile(`(?i)^(angle|frame|step|image)[_-]?\d+$`)
	trailingDigits      = regexp.MustCompile(`[_-]?\d+$`)
	panoramaPattern     = regexp.MustCompile(`(?i)pano(cube)?|panorama|360|equirect`)
)

// Classify derives the scene type and display name from a filename. Names without a
// recognised prefix go through the sequence and panorama heuristics; anything left
// returns a *models.ClassificationError.
func Classify(filename string) (Classification, error) {
	base := BaseName(filename)
	lower := strings.ToLower(base)

	for _, rule := range prefixRules {
		if !strings.HasPrefix(lower, rule.prefix) {
			continue
		}
		rest := base[len(rule.prefix):]
		if rule.sceneType != models.SceneTypeSequence {
			rest = numericTailPattern.ReplaceAllString(rest, "")
		}
		return Classification{
			SceneType:    rule.sceneType,
			SceneName:    SlugToName(rest),
			OriginalName: base,
			Prefix:       rule.prefix,
		}, nil
	}

	if sequenceTailPattern.MatchString(base) || sequenceWordPattern.MatchString(base) {
		return Classification{
			SceneType:    models.SceneTypeSequence,
			SceneName:    SlugToName(trailingDigits.ReplaceAllString(base, "")),
			OriginalName: base,
			Prefix:       models.SceneTypeSequence.Prefix(),
			AutoDetected: true,
		}, nil
	}

	if panoramaPattern.MatchString(base) {
		return Classification{
			SceneType:    models.SceneType360,
			SceneName:    SlugToName(base),
			OriginalName: base,
			Prefix:       models.SceneType360.Prefix(),
			AutoDetected: true,
		}, nil
	}

	return Classification{}, &models.ClassificationError{File: filename}
}

// ClassifyFiles classifies every file of dir listed in names. Files that match no rule
// are returned as errors alongside the classified ones.
func ClassifyFiles(dir string, names []string) ([]ClassifiedFile, []*models.ClassificationError) {
	var (
		files []ClassifiedFile
		errs  []*models.ClassificationError
	)
	for _, name := range names {
		c, err := Classify(name)
		if err != nil {
			errs = append(errs, &models.ClassificationError{File: joinPath(dir, name)})
			continue
		}
		files = append(files, ClassifiedFile{Path: joinPath(dir, name), Classification: c})
	}
	return files, errs
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
