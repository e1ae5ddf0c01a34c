package storage

import (
	"bufio"
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const sniffLen = 3072

// ObjectPutter is the part of *minio.Client the mirror uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Mirror copies downloaded tour folders into a bucket, keeping their layout.
type Mirror struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *zap.Logger
}

// MirrorResult counts what one Sync call stored.
type MirrorResult struct {
	Objects int
	Bytes   int64
}

// NewMirror creates a Mirror writing below prefix in bucket.
func NewMirror(client ObjectPutter, bucket, prefix string, logger *zap.Logger) *Mirror {
	return &Mirror{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// ObjectName maps a path inside fs to its object key.
func (m *Mirror) ObjectName(p string) string {
	return path.Join(m.prefix, filepath.ToSlash(p))
}

// Sync uploads every regular file below dir. Hidden files are skipped.
func (m *Mirror) Sync(ctx context.Context, fs billy.Filesystem, dir string) (MirrorResult, error) {
	var res MirrorResult
	err := util.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if strings.HasPrefix(info.Name(), ".") && p != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if err := m.put(ctx, fs, p, info.Size()); err != nil {
			return err
		}
		res.Objects++
		res.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return res, err
	}
	m.logger.Info("Mirrored tour",
		zap.String("bucket", m.bucket),
		zap.String("folder", dir),
		zap.Int("objects", res.Objects),
		zap.Int64("bytes", res.Bytes),
	)
	return res, nil
}

func (m *Mirror) put(ctx context.Context, fs billy.Filesystem, p string, size int64) error {
	f, err := fs.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, sniffLen)
	head, _ := br.Peek(sniffLen)
	name := m.ObjectName(p)
	_, err = m.client.PutObject(ctx, m.bucket, name, br, size, minio.PutObjectOptions{
		ContentType: mimetype.Detect(head).String(),
	})
	if err != nil {
		return errors.Wrapf(err, "put %s", name)
	}
	m.logger.Debug("Object stored", zap.String("object", name), zap.Int64("size", size))
	return nil
}
