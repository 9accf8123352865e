package domain

import "time"

// Indexing job statuses. The only legal transition is running -> completed.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
)

// IndexJob is one re-indexing sweep run record. The row is the single source
// of truth for sweep progress; clients poll it.
type IndexJob struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	ProductsTotal     int        `json:"productsTotal"`
	ProductsProcessed int        `json:"productsProcessed"`
	Failures          int        `json:"failures"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}
