package report

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Diagnostic counter names shared across components.
const (
	ParseError         = "parse_error"
	UndefinedStatistic = "undefined_statistic"
	MissingEntry       = "missing_entry"
	Incompatible       = "incompatible_feature"
	Intersecting       = "intersecting_feature"
	DroppedEntry       = "dropped_entry"
	DroppedFeature     = "dropped_feature"
	Entries            = "entries"
	Features           = "features"
)

// Counts holds named diagnostic counters. A Counts value is owned by a
// single goroutine; workers build their own and the collector merges them.
type Counts map[string]int

// Inc adds n to the named counter.
func (c Counts) Inc(name string, n int) {
	if n == 0 {
		return
	}
	c[name] += n
}

// Merge adds every counter of other into c.
func (c Counts) Merge(other Counts) {
	for k, v := range other {
		c[k] += v
	}
}

// Get returns the value of a counter (0 when never incremented).
func (c Counts) Get(name string) int {
	return c[name]
}

// Names returns the counter names in sorted order.
func (c Counts) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// StageReport describes one executed pipeline stage
type StageReport struct {
	Stage    string
	Input    string
	Output   string
	Counts   Counts
	Duration time.Duration
}

// Report collects the stage reports of one pipeline run
type Report struct {
	RunID  string
	Start  time.Time
	Stages []StageReport
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New creates an empty report with a fresh run ID.
func New(now time.Time) *Report {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()

	return &Report{
		RunID: id.String(),
		Start: now,
	}
}

// Add appends a stage report.
func (r *Report) Add(s StageReport) {
	if s.Counts == nil {
		s.Counts = Counts{}
	}
	r.Stages = append(r.Stages, s)
}

// Totals sums every counter over all stages.
func (r *Report) Totals() Counts {
	out := Counts{}
	for _, s := range r.Stages {
		out.Merge(s.Counts)
	}
	return out
}
