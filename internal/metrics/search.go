package metrics

import (
	"sort"
	"sync"
	"time"
)

// Idea search series, labelled by search type
var (
	SearchQueriesTotal  = counter("search", "queries_total", "Idea searches", "type", "status")
	SearchQueryDuration = histogram("search", "duration_seconds", "Idea search latency", []float64{.01, .05, .1, .25, .5, 1, 2.5, 5}, "type")
	SearchResultsTotal  = counter("search", "results_total", "Ideas returned by searches", "type")
)

// Search types
const (
	SearchQuick = "quick"
	SearchFull  = "full"
)

const recentTimings = 1000

// SearchQuery is one finished idea search
type SearchQuery struct {
	Type     string
	Results  int
	Duration time.Duration
	Err      error
}

// SearchStats summarizes recent idea searches
type SearchStats struct {
	Queries      int64            `json:"queries"`
	ByType       map[string]int64 `json:"by_type"`
	Errors       int64            `json:"errors"`
	EmptyResults int64            `json:"empty_results"`
	Results      int64            `json:"results"`
	AvgMs        float64          `json:"avg_ms"`
	P50Ms        int64            `json:"p50_ms"`
	P95Ms        int64            `json:"p95_ms"`
	P99Ms        int64            `json:"p99_ms"`
	MaxMs        int64            `json:"max_ms"`
}

// SearchRecorder keeps counters and a ring of the most recent durations
type SearchRecorder struct {
	mu      sync.Mutex
	stats   SearchStats
	totalMs int64
	timings []int64
	next    int
}

// NewSearchRecorder creates an empty recorder
func NewSearchRecorder() *SearchRecorder {
	return &SearchRecorder{
		stats:   SearchStats{ByType: map[string]int64{}},
		timings: make([]int64, 0, recentTimings),
	}
}

var (
	searches     *SearchRecorder
	searchesOnce sync.Once
)

// Searches returns the process-wide idea search recorder
func Searches() *SearchRecorder {
	searchesOnce.Do(func() { searches = NewSearchRecorder() })
	return searches
}

// Record adds q to the in-process stats and the Prometheus series
func (r *SearchRecorder) Record(q SearchQuery) {
	ms := q.Duration.Milliseconds()

	r.mu.Lock()
	r.stats.Queries++
	r.stats.ByType[q.Type]++
	if q.Err != nil {
		r.stats.Errors++
	} else if q.Results == 0 {
		r.stats.EmptyResults++
	}
	r.stats.Results += int64(q.Results)
	r.totalMs += ms
	if ms > r.stats.MaxMs {
		r.stats.MaxMs = ms
	}
	if len(r.timings) < recentTimings {
		r.timings = append(r.timings, ms)
	} else {
		r.timings[r.next] = ms
		r.next = (r.next + 1) % recentTimings
	}
	r.mu.Unlock()

	SearchQueriesTotal.WithLabelValues(q.Type, status(q.Err)).Inc()
	SearchQueryDuration.WithLabelValues(q.Type).Observe(q.Duration.Seconds())
	SearchResultsTotal.WithLabelValues(q.Type).Add(float64(q.Results))
}

// Stats returns a snapshot; percentiles cover the most recent searches only
func (r *SearchRecorder) Stats() SearchStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.stats
	out.ByType = make(map[string]int64, len(r.stats.ByType))
	for k, v := range r.stats.ByType {
		out.ByType[k] = v
	}
	if out.Queries > 0 {
		out.AvgMs = float64(r.totalMs) / float64(out.Queries)
	}

	if n := len(r.timings); n > 0 {
		sorted := append([]int64(nil), r.timings...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		out.P50Ms = sorted[n*50/100]
		out.P95Ms = sorted[n*95/100]
		out.P99Ms = sorted[n*99/100]
	}
	return out
}

// Reset clears every counter and timing
func (r *SearchRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = SearchStats{ByType: map[string]int64{}}
	r.totalMs = 0
	r.timings = r.timings[:0]
	r.next = 0
}
