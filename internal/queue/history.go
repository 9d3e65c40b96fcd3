package queue

import (
	"sync"
	"time"
)

// JobStatus is the terminal outcome of a job run.
type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobRecord is the finished-job metadata kept for inspection.
type JobRecord struct {
	Queue      Name      `json:"queue"`
	Key        string    `json:"key"`
	Status     JobStatus `json:"status"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// History keeps bounded completed/failed job records per queue.
// Eviction is by count and by age, applied on insert.
type History struct {
	mu        sync.Mutex
	policy    Policy
	completed []JobRecord
	failed    []JobRecord
}

func NewHistory(policy Policy) *History {
	return &History{policy: policy}
}

// Record appends a finished job, evicting old entries past the
// retention bounds.
func (h *History) Record(record JobRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch record.Status {
	case JobCompleted:
		h.completed = append(h.completed, record)
		h.completed = prune(h.completed, h.policy.CompletedRetention)
	case JobFailed:
		h.failed = append(h.failed, record)
		h.failed = prune(h.failed, h.policy.FailedRetention)
	}
}

// Completed returns a snapshot of retained completed jobs.
func (h *History) Completed() []JobRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = prune(h.completed, h.policy.CompletedRetention)
	return append([]JobRecord(nil), h.completed...)
}

// Failed returns a snapshot of retained failed jobs.
func (h *History) Failed() []JobRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = prune(h.failed, h.policy.FailedRetention)
	return append([]JobRecord(nil), h.failed...)
}

func prune(records []JobRecord, retention Retention) []JobRecord {
	if retention.MaxAge > 0 {
		cutoff := time.Now().Add(-retention.MaxAge)
		kept := records[:0]
		for _, r := range records {
			if r.FinishedAt.After(cutoff) {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	if retention.MaxCount > 0 && len(records) > retention.MaxCount {
		records = records[len(records)-retention.MaxCount:]
	}
	return records
}
