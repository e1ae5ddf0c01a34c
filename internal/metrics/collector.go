package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// TourTimings holds the phase latencies of processing one tour.
type TourTimings struct {
	mu sync.Mutex

	Tour           string
	TotalStartTime time.Time
	TotalLatencyMs float64

	phaseStart map[string]time.Time
	// Timings maps phase name to its latency in milliseconds.
	Timings map[string]float64
}

// NewTourTimings creates a timings collector and starts the total clock.
func NewTourTimings(tour string) *TourTimings {
	return &TourTimings{
		Tour:           tour,
		TotalStartTime: time.Now(),
		phaseStart:     make(map[string]time.Time),
		Timings:        make(map[string]float64),
	}
}

// StartPhase marks the start of a phase.
func (t *TourTimings) StartPhase(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phaseStart[name] = time.Now()
}

// EndPhase marks the end of a phase. Repeated phases accumulate.
func (t *TourTimings) EndPhase(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if start, ok := t.phaseStart[name]; ok {
		t.Timings[name] += msSince(start)
		delete(t.phaseStart, name)
	}
}

// Finalize stops the total clock and returns the elapsed time.
func (t *TourTimings) Finalize() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.TotalStartTime)
	t.TotalLatencyMs = float64(elapsed.Microseconds()) / 1000.0
	t.Timings["total"] = t.TotalLatencyMs
	return elapsed
}

// Summary renders the phases in a single line, slowest first.
func (t *TourTimings) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	phases := make([]string, 0, len(t.Timings))
	for name := range t.Timings {
		if name != "total" {
			phases = append(phases, name)
		}
	}
	sort.Slice(phases, func(i, j int) bool {
		return t.Timings[phases[i]] > t.Timings[phases[j]]
	})

	parts := make([]string, 0, len(phases))
	for _, name := range phases {
		parts = append(parts, fmt.Sprintf("%s=%sms", name, formatFloat(t.Timings[name])))
	}
	return fmt.Sprintf("%s: total=%sms [%s]", t.Tour, formatFloat(t.TotalLatencyMs), strings.Join(parts, " "))
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
