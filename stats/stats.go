// Package stats keeps process wide counters for a conversion run. All
// updates are atomic adds, so totals do not depend on scheduling.
package stats

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

// Counters are safe for concurrent use. The zero value is ready to use.
type Counters struct {
	Articles            atomic.Uint64
	RefsBeforeFiltering atomic.Uint64
	RefsAfterFiltering  atomic.Uint64
	CompletedJobs       atomic.Uint64
	FailedJobs          atomic.Uint64
	SkippedReferenceIDs atomic.Uint64
	SkippedAuthors      atomic.Uint64
	SkippedArticles     atomic.Uint64

	runID      string
	jobsStart  atomic.Uint64
	jobsCount  atomic.Uint64
	rangeIsSet atomic.Bool
}

// New returns counters with a fresh run id.
func New() *Counters {
	return &Counters{runID: uuid.New().String()}
}

// SetJobRange records the job range [start, start+count-1] once; later
// calls are ignored.
func (c *Counters) SetJobRange(start, count int) {
	if !c.rangeIsSet.CompareAndSwap(false, true) {
		return
	}
	c.jobsStart.Store(uint64(start))
	c.jobsCount.Store(uint64(count))
}

// JobRange returns start and count.
func (c *Counters) JobRange() (start, count int) {
	return int(c.jobsStart.Load()), int(c.jobsCount.Load())
}

// AddReferences accumulates reference counts from a single article.
func (c *Counters) AddReferences(before, after, skipped int) {
	c.RefsBeforeFiltering.Add(uint64(before))
	c.RefsAfterFiltering.Add(uint64(after))
	c.SkippedReferenceIDs.Add(uint64(skipped))
}

// JobDone increments the completed job counter and returns the new value.
func (c *Counters) JobDone() int {
	return int(c.CompletedJobs.Add(1))
}

// Snapshot is a point in time copy of the counters.
type Snapshot struct {
	RunID               string `json:"run_id,omitempty"`
	Articles            uint64 `json:"articles_count"`
	RefsBeforeFiltering uint64 `json:"refs_before_filtering"`
	RefsAfterFiltering  uint64 `json:"refs_after_filtering"`
	JobsStart           uint64 `json:"jobs_start"`
	JobsCount           uint64 `json:"jobs_count"`
	CompletedJobs       uint64 `json:"completed_job"`
	FailedJobs          uint64 `json:"failed_jobs"`
	SkippedReferenceIDs uint64 `json:"skipped_reference_ids"`
	SkippedAuthors      uint64 `json:"skipped_authors"`
	SkippedArticles     uint64 `json:"skipped_articles"`
}

// Snapshot reads all counters. Individual values are consistent, the set as
// a whole is only consistent once all workers are done.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		RunID:               c.runID,
		Articles:            c.Articles.Load(),
		RefsBeforeFiltering: c.RefsBeforeFiltering.Load(),
		RefsAfterFiltering:  c.RefsAfterFiltering.Load(),
		JobsStart:           c.jobsStart.Load(),
		JobsCount:           c.jobsCount.Load(),
		CompletedJobs:       c.CompletedJobs.Load(),
		FailedJobs:          c.FailedJobs.Load(),
		SkippedReferenceIDs: c.SkippedReferenceIDs.Load(),
		SkippedAuthors:      c.SkippedAuthors.Load(),
		SkippedArticles:     c.SkippedArticles.Load(),
	}
}

// String renders the snapshot as indented JSON.
func (s Snapshot) String() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Sprintf("%#v", s)
	}
	return string(b)
}
