package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchRecorder(t *testing.T) {
	r := NewSearchRecorder()
	assert.Zero(t, r.Stats().Queries)

	for i := 1; i <= 100; i++ {
		r.Record(SearchQuery{Type: SearchFull, Results: 2, Duration: time.Duration(i) * time.Millisecond})
	}
	r.Record(SearchQuery{Type: SearchQuick, Duration: 5 * time.Millisecond})
	r.Record(SearchQuery{Type: SearchQuick, Duration: time.Millisecond, Err: errors.New("boom")})

	s := r.Stats()
	assert.EqualValues(t, 102, s.Queries)
	assert.EqualValues(t, 100, s.ByType[SearchFull])
	assert.EqualValues(t, 2, s.ByType[SearchQuick])
	assert.EqualValues(t, 1, s.Errors)
	assert.EqualValues(t, 1, s.EmptyResults, "failed searches are not counted as empty")
	assert.EqualValues(t, 200, s.Results)
	assert.EqualValues(t, 100, s.MaxMs)
	assert.EqualValues(t, 50, s.P50Ms)
	assert.EqualValues(t, 95, s.P95Ms)

	s.ByType[SearchFull] = 0
	assert.EqualValues(t, 100, r.Stats().ByType[SearchFull], "snapshots are copies")

	r.Reset()
	assert.Zero(t, r.Stats().Queries)
	assert.Zero(t, r.Stats().P99Ms)
}

func TestSearchRecorderKeepsRecentTimings(t *testing.T) {
	r := NewSearchRecorder()
	for i := 0; i < recentTimings; i++ {
		r.Record(SearchQuery{Type: SearchFull, Duration: time.Second})
	}
	for i := 0; i < recentTimings; i++ {
		r.Record(SearchQuery{Type: SearchFull, Duration: time.Millisecond})
	}

	s := r.Stats()
	assert.EqualValues(t, 1, s.P99Ms)
	assert.EqualValues(t, 1000, s.MaxMs)
}
