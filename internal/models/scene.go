package models

// SceneType is the kind of media a scene holds.
type SceneType string

const (
	SceneType2D       SceneType = "2d"
	SceneType360      SceneType = "360"
	SceneTypeSequence SceneType = "sequence"
)

// Prefix returns the filename prefix that marks files of this scene type.
func (t SceneType) Prefix() string {
	switch t {
	case SceneType2D:
		return "2d_"
	case SceneTypeSequence:
		return "seq_"
	default:
		return "360_"
	}
}

// AutomotiveType is the exterior/interior namespace of colors and scenes.
type AutomotiveType string

const (
	AutomotiveExternal AutomotiveType = "external"
	AutomotiveInternal AutomotiveType = "internal"
)

// AutomotiveTypes lists the namespaces in processing order.
var AutomotiveTypes = []AutomotiveType{AutomotiveExternal, AutomotiveInternal}

// SceneSpec describes one remote scene to create. Files holds paths relative to the
// tour root, already in upload order.
type SceneSpec struct {
	Name           string
	SceneType      SceneType
	AutomotiveType AutomotiveType
	Color          *ColorRef
	Files          []string
}

// ColorID returns the remote color id, or the empty string when the scene has no color.
func (s SceneSpec) ColorID() string {
	if s.Color == nil {
		return ""
	}
	return s.Color.ID
}
