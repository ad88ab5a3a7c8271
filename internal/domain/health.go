package domain

import "time"

type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthError HealthStatus = "error"
)

// SourceMetrics captures the funnel for one source during an ingestion run.
type SourceMetrics struct {
	Fetched  int `json:"fetched"`
	Positive int `json:"positive"`
	Final    int `json:"final"`
}

// HealthRecord is the per-region status blob merge-written after every
// ingestion, rotation and digest run. Zero-valued fields are left untouched
// by a merge so each job only overwrites its own slice of the record.
type HealthRecord struct {
	RegionID string       `json:"regionId"`
	Status   HealthStatus `json:"status"`
	Error    string       `json:"error,omitempty"`

	LastIngestAt    *time.Time               `json:"lastIngestAt,omitempty"`
	LastIngestCount int                      `json:"lastIngestCount"`
	CountToday      int                      `json:"countToday"`
	SourceMetrics   map[string]SourceMetrics `json:"sourceMetrics,omitempty"`

	LastRotationAt *time.Time `json:"lastRotationAt,omitempty"`
	LastDigestAt   *time.Time `json:"lastDigestAt,omitempty"`
	LastDigestSize int        `json:"lastDigestSize"`

	UpdatedAt time.Time `json:"updatedAt"`
}
