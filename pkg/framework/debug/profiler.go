package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections, such as the
// process callback of each pd instance.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	Name   string
	Count  uint64
	Total  time.Duration
	Min    time.Duration
	Max    time.Duration
	Last   time.Duration
	Frames uint64
}

// NewProfiler creates an enabled profiler.
func NewProfiler() *Profiler {
	p := &Profiler{measurements: make(map[string]*Measurement)}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a section; the returned function records the elapsed
// time along with the number of frames the section handled.
func (p *Profiler) Start(name string) func(frames int) {
	if !p.enabled.Load() {
		return func(int) {}
	}

	start := time.Now()
	return func(frames int) {
		p.record(name, time.Since(start), frames)
	}
}

func (p *Profiler) record(name string, elapsed time.Duration, frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		m = &Measurement{Name: name, Min: elapsed, Max: elapsed}
		p.measurements[name] = m
	}

	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	if frames > 0 {
		m.Frames += uint64(frames)
	}
	if elapsed < m.Min {
		m.Min = elapsed
	}
	if elapsed > m.Max {
		m.Max = elapsed
	}
}

// Measurement returns a copy of the named measurement.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, ok := p.measurements[name]
	if !ok {
		return Measurement{}, false
	}
	return *m, true
}

// Forget drops a measurement, e.g. when its instance is released.
func (p *Profiler) Forget(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.measurements, name)
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report lists every measurement sorted by name.
func (p *Profiler) Report() string {
	p.mu.RLock()
	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	p.mu.RUnlock()

	if len(names) == 0 {
		return "No measurements recorded"
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		m, ok := p.Measurement(name)
		if !ok {
			continue
		}
		sb.WriteString(m.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Average returns the average time per call.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Load returns the share of real time spent processing at sampleRate, in
// percent. Zero when no frames were recorded.
func (m Measurement) Load(sampleRate float64) float64 {
	if m.Frames == 0 || sampleRate <= 0 {
		return 0
	}
	audio := time.Duration(float64(m.Frames) / sampleRate * float64(time.Second))
	return float64(m.Total) / float64(audio) * 100
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s: count=%d avg=%v min=%v max=%v last=%v frames=%d",
		m.Name, m.Count, m.Average(), m.Min, m.Max, m.Last, m.Frames)
}
