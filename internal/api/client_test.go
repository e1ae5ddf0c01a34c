package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tour-sync/internal/apitest"
	"tour-sync/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestClient(t *testing.T) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	return NewClient(srv.Config(), zaptest.NewLogger(t), WithTransport(srv.Transport())), srv
}

func TestColorCode(t *testing.T) {
	assert.Equal(t, "NEGRO-SPORT", ColorCode("negro-sport"))
	assert.Equal(t, "GRIS-PLATA-METALIZAD", ColorCode("gris plata metalizado oscuro"))
}

func TestUploadColorFile(t *testing.T) {
	client, srv := newTestClient(t)

	id, err := client.UploadColorFile(context.Background(), ColorUpload{
		AutomotiveType: models.AutomotiveExternal,
		Slug:           "negro-sport",
		Name:           "Negro Sport",
		File:           Part{FileName: "negro-sport.png", Reader: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, err)

	rec, ok := srv.FileByID(id)
	require.True(t, ok)
	assert.Equal(t, "negro-sport.png", rec.FileName)
	assert.Equal(t, "true", rec.IsPublic)
	assert.Equal(t, "Negro Sport", rec.MetaName)
	assert.Equal(t, "NEGRO-SPORT", rec.MetaCode)
	assert.Equal(t, "#000000", rec.MetaHex)
	assert.Equal(t, "automotive-color", rec.MetaType)
	assert.Len(t, rec.MetaID, 36)
	assert.True(t, strings.HasPrefix(rec.FilePath, ".api/virtualTour/config.external/"))
	assert.True(t, strings.HasSuffix(rec.FilePath, "_negro-sport.png"))
}

func TestCreateSceneSendsOrderedMedia(t *testing.T) {
	client, srv := newTestClient(t)

	id, err := client.CreateScene(context.Background(), SceneUpload{
		Name:           "Spin",
		SceneType:      models.SceneTypeSequence,
		AutomotiveType: models.AutomotiveExternal,
		Media: []Part{
			{FileName: "seq_001.png", Reader: bytes.NewReader(pngHeader)},
			{FileName: "seq_002.png", Reader: bytes.NewReader(pngHeader)},
		},
	})
	require.NoError(t, err)

	scenes := srv.Scenes()
	require.Len(t, scenes, 1)
	assert.Equal(t, id, scenes[0].ID)
	assert.Equal(t, "sequence", scenes[0].SceneType)
	assert.Equal(t, "null", scenes[0].AutomotiveColor)
	assert.Equal(t, []string{"seq_001.png", "seq_002.png"}, scenes[0].Media)
	assert.Equal(t, "image/png", scenes[0].ContentTypes[0])
}

func TestRemoteErrorsCarryStatusAndMessage(t *testing.T) {
	client, srv := newTestClient(t)
	srv.FailScene = func(string) bool { return true }

	_, err := client.CreateScene(context.Background(), SceneUpload{
		Name:  "Broken",
		Media: []Part{{FileName: "2d_a.png", Reader: bytes.NewReader(pngHeader)}},
	})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "simulated remote failure", apiErr.Message)
}

func TestCreateAndUpdateVirtualTour(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateVirtualTour(ctx, map[string]any{
		"virtualTourName": "Model X",
		"virtualTourCode": "model-x",
	})
	require.NoError(t, err)
	assert.Equal(t, "Model X", created.VirtualTourName)

	require.NoError(t, client.UpdateVirtualTour(ctx, created.ID, map[string]any{"scenes": []string{"s1", "s2"}}))

	tour, ok := srv.Tour("model-x")
	require.True(t, ok)
	assert.Equal(t, []string{"s1", "s2"}, tour.Scenes)

	err = client.UpdateVirtualTour(ctx, "tour-missing", map[string]any{"scenes": []string{"s1"}})
	assert.Error(t, err)
}

func TestFetchTour(t *testing.T) {
	client, srv := newTestClient(t)
	srv.AddView(&models.TourDocument{ID: "vt-1", VirtualTourName: "Loft", EventType: "Spaces"})
	srv.AddRawView("vt-2", map[string]any{"virtualTourName": "No id"})

	doc, err := client.FetchTour(context.Background(), "vt-1")
	require.NoError(t, err)
	assert.Equal(t, "Loft", doc.VirtualTourName)
	assert.True(t, doc.IsSpaces())

	_, err = client.FetchTour(context.Background(), "vt-2")
	assert.True(t, errors.Is(err, models.ErrTourNotFound))

	_, err = client.FetchTour(context.Background(), "vt-3")
	assert.True(t, errors.Is(err, models.ErrTourNotFound))
}

func TestDownloadFollowsRedirects(t *testing.T) {
	client, srv := newTestClient(t)
	srv.AddMedia("front.png", pngHeader)

	var buf bytes.Buffer
	n, contentType, err := client.Download(context.Background(), apitest.RedirectURL("front.png"), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngHeader)), n)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, pngHeader, buf.Bytes())

	_, _, err = client.Download(context.Background(), apitest.MediaURL("missing.png"), &buf)
	assert.Error(t, err)
}

func TestDownloadSendsNoCredentialsToMediaHosts(t *testing.T) {
	client, srv := newTestClient(t)
	srv.AddMedia("frame.png", pngHeader)

	var buf bytes.Buffer
	n, _, err := client.Download(context.Background(), apitest.SignedMediaURL("frame.png"), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngHeader)), n)

	buf.Reset()
	_, _, err = client.Download(context.Background(), apitest.MediaURL("frame.png"), &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"", ""}, srv.MediaAuthorizations())
}

// blockingTransport never answers; requests end when their context does.
type blockingTransport struct{}

func (blockingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

func TestRequestTimeoutBoundsJSONCallsAndDownloads(t *testing.T) {
	cfg := apitest.New().Config()
	cfg.RequestTimeout = 20 * time.Millisecond
	client := NewClient(cfg, zaptest.NewLogger(t), WithTransport(blockingTransport{}))

	start := time.Now()
	err := client.UpdateVirtualTour(context.Background(), "tour-1", map[string]any{"scenes": []string{"s1"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var buf bytes.Buffer
	_, _, err = client.Download(context.Background(), apitest.MediaURL("frame.png"), &buf)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Less(t, time.Since(start), 10*time.Second)
}
