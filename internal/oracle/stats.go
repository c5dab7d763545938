package oracle

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats tracks verification call counters. Counters are atomic; the handler
// increments them concurrently and lost updates would be a correctness bug.
type Stats struct {
	started time.Time

	totalRequests           atomic.Int64
	successfulVerifications atomic.Int64
	failedVerifications     atomic.Int64
}

// NewStats creates a Stats instance anchored at the current time.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// RecordRequest counts one verification request.
func (s *Stats) RecordRequest() {
	s.totalRequests.Add(1)
}

// RecordSuccess counts one successful verification.
func (s *Stats) RecordSuccess() {
	s.successfulVerifications.Add(1)
}

// RecordFailure counts one failed verification (wrong PIN only; format
// rejections are not counted as verification failures).
func (s *Stats) RecordFailure() {
	s.failedVerifications.Add(1)
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.totalRequests.Store(0)
	s.successfulVerifications.Store(0)
	s.failedVerifications.Store(0)
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	TotalRequests           int64  `json:"totalRequests"`
	SuccessfulVerifications int64  `json:"successfulVerifications"`
	FailedVerifications     int64  `json:"failedVerifications"`
	SuccessRate             string `json:"successRate"`
	UptimeSeconds           int64  `json:"uptime"`
}

// Snapshot returns the current counter values with a derived success rate.
func (s *Stats) Snapshot() Snapshot {
	total := s.totalRequests.Load()
	success := s.successfulVerifications.Load()

	rate := "0%"
	if total > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(success)/float64(total)*100)
	}

	return Snapshot{
		TotalRequests:           total,
		SuccessfulVerifications: success,
		FailedVerifications:     s.failedVerifications.Load(),
		SuccessRate:             rate,
		UptimeSeconds:           int64(time.Since(s.started).Seconds()),
	}
}
