package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tour-sync/internal/metrics"
)

type storedObject struct {
	data        []byte
	contentType string
}

type fakePutter struct {
	objects map[string]storedObject
	err     error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if f.objects == nil {
		f.objects = make(map[string]storedObject)
	}
	f.objects[bucket+"/"+name] = storedObject{data: data, contentType: opts.ContentType}
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: size}, nil
}

func TestMirrorSync(t *testing.T) {
	fs := memfs.New()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, util.WriteFile(fs, "model-x/_colors/external/rojo.png", png, 0o644))
	require.NoError(t, util.WriteFile(fs, "model-x/_config.json", []byte(`{"eventType":"Automotive"}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "model-x/.DS_Store", []byte("x"), 0o644))
	require.NoError(t, util.WriteFile(fs, "other/skip.png", png, 0o644))

	putter := &fakePutter{}
	m := NewMirror(putter, "tours", "/exports/", zap.NewNop())

	res, err := m.Sync(context.Background(), fs, "model-x")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Objects)
	assert.Equal(t, int64(len(png)+len(`{"eventType":"Automotive"}`)), res.Bytes)

	obj, ok := putter.objects["tours/exports/model-x/_colors/external/rojo.png"]
	require.True(t, ok)
	assert.Equal(t, png, obj.data)
	assert.Equal(t, "image/png", obj.contentType)

	cfg, ok := putter.objects["tours/exports/model-x/_config.json"]
	require.True(t, ok)
	assert.Equal(t, "application/json", cfg.contentType)
	assert.Len(t, putter.objects, 2)
}

func TestMirrorSyncPropagatesErrors(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "t/a.png", []byte("a"), 0o644))

	m := NewMirror(&fakePutter{err: errors.New("denied")}, "b", "", zap.NewNop())
	_, err := m.Sync(context.Background(), fs, "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put t/a.png")
}

func TestMirrorObjectName(t *testing.T) {
	assert.Equal(t, "a/b.png", NewMirror(nil, "b", "", zap.NewNop()).ObjectName("a/b.png"))
	assert.Equal(t, "p/a/b.png", NewMirror(nil, "b", "p/", zap.NewNop()).ObjectName("a/b.png"))
}

func TestInstrumentedPutterCountsBytes(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "t/a.png", []byte("12345"), 0o644))
	require.NoError(t, util.WriteFile(fs, "t/b.png", []byte("678"), 0o644))

	m := metrics.NewMetrics()
	inner := &fakePutter{}
	mirror := NewMirror(NewInstrumentedPutter(inner, m, zap.NewNop()), "b", "", zap.NewNop())

	res, err := mirror.Sync(context.Background(), fs, "t")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Objects)
	assert.Len(t, inner.objects, 2)

	count, err := testutil.GatherAndCount(m.Registry(), "tour_sync_mirrored_bytes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []byte("12345"), inner.objects["b/t/a.png"].data)
}
