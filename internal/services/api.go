package services

import (
	"context"
	"io"
	"path"

	"github.com/go-git/go-billy/v5"

	"tour-sync/internal/api"
	"tour-sync/internal/models"
)

// TourAPI is the part of the remote API a bulk upload needs.
type TourAPI interface {
	UploadColorFile(ctx context.Context, u api.ColorUpload) (string, error)
	CreateVirtualTour(ctx context.Context, payload map[string]any) (*api.CreatedTour, error)
	UpdateVirtualTour(ctx context.Context, id string, fields map[string]any) error
	CreateScene(ctx context.Context, u api.SceneUpload) (string, error)
	CreateFloorPlan(ctx context.Context, name string, media api.Part) (string, error)
}

// TourSource is the part of the remote API a download needs.
type TourSource interface {
	FetchTour(ctx context.Context, id string) (*models.TourDocument, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, string, error)
}

// TourFolder is one tour directory. FS is rooted at the tour folder.
type TourFolder struct {
	Name string
	FS   billy.Filesystem
}

// openParts opens files for a multipart upload. The returned func closes them all.
func openParts(fs billy.Filesystem, files []string) ([]api.Part, func(), error) {
	parts := make([]api.Part, 0, len(files))
	var opened []billy.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, name := range files {
		f, err := fs.Open(name)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		parts = append(parts, api.Part{FileName: path.Base(name), Reader: f})
	}
	return parts, closeAll, nil
}
