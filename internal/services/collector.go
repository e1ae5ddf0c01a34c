package services

import (
	"sync"

	"go.uber.org/zap"

	"tour-sync/internal/metrics"
	"tour-sync/internal/models"
)

// Collector records items that were skipped during a run so callers can see why a
// count came up short.
type Collector struct {
	mu       sync.Mutex
	failures []models.ItemFailure
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewCollector creates an empty Collector.
func NewCollector(logger *zap.Logger, m *metrics.Metrics) *Collector {
	return &Collector{logger: logger, metrics: m}
}

// Record stores a failed item and logs it as a warning.
func (c *Collector) Record(tour string, kind models.ItemKind, item string, err error) {
	c.mu.Lock()
	c.failures = append(c.failures, models.ItemFailure{
		Tour:   tour,
		Kind:   kind,
		Item:   item,
		Reason: err.Error(),
	})
	c.mu.Unlock()

	c.metrics.RecordItem(string(kind), err)
	c.logger.Warn("Item skipped",
		zap.String("tour", tour),
		zap.String("kind", string(kind)),
		zap.String("item", item),
		zap.Error(err),
	)
}

// Failures returns a copy of everything recorded so far.
func (c *Collector) Failures() []models.ItemFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ItemFailure(nil), c.failures...)
}

// ForTour returns the failures recorded for one tour.
func (c *Collector) ForTour(tour string) []models.ItemFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ItemFailure
	for _, f := range c.failures {
		if f.Tour == tour {
			out = append(out, f)
		}
	}
	return out
}

// Reset drops everything recorded so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = nil
}
