package storage

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"tour-sync/internal/metrics"
)

type countingReader struct {
	r           io.Reader
	bytes       int64
	sumReadMs   int64
	firstReadAt time.Time
}

func newCountingReader(r io.Reader) *countingReader { return &countingReader{r: r} }

func (c *countingReader) Read(p []byte) (int, error) {
	t0 := time.Now()
	n, err := c.r.Read(p)
	c.sumReadMs += time.Since(t0).Milliseconds()
	if n > 0 && c.firstReadAt.IsZero() {
		c.firstReadAt = time.Now()
	}
	c.bytes += int64(n)
	return n, err
}

// InstrumentedPutter records latency and transferred bytes of every PutObject.
type InstrumentedPutter struct {
	next    ObjectPutter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewInstrumentedPutter wraps next.
func NewInstrumentedPutter(next ObjectPutter, m *metrics.Metrics, logger *zap.Logger) *InstrumentedPutter {
	return &InstrumentedPutter{next: next, metrics: m, logger: logger}
}

func (p *InstrumentedPutter) PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	cr := newCountingReader(reader)
	start := time.Now()
	info, err := p.next.PutObject(ctx, bucket, objectName, cr, objectSize, opts)
	elapsed := time.Since(start)

	p.metrics.ObserveRequest("mirror_put", elapsed)
	p.metrics.AddMirroredBytes(cr.bytes)
	p.logger.Debug("PutObject",
		zap.String("object", objectName),
		zap.Int64("bytes", cr.bytes),
		zap.Int64("read_ms", cr.sumReadMs),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)
	return info, err
}
