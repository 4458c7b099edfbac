package model

import (
	"strconv"
	"time"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// JobRequest is a customer request booked on the job card. Each one becomes
// a request task on the write-up checklist.
type JobRequest struct {
	ID    uint `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID uint `gorm:"not null;index" json:"job_id"`
	// RequestKey is the key causes refer to; blank falls back to the row id
	RequestKey  string    `gorm:"size:64" json:"request_key"`
	Description string    `gorm:"size:500;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (JobRequest) TableName() string {
	return "job_requests"
}

// Key returns the request key used on the checklist.
func (r JobRequest) Key() string {
	if r.RequestKey != "" {
		return r.RequestKey
	}
	return strconv.FormatUint(uint64(r.ID), 10)
}

// JobRequestsForChecklist converts rows into checklist request input.
func JobRequestsForChecklist(rows []JobRequest) []writeup.JobRequest {
	out := make([]writeup.JobRequest, len(rows))
	for i, r := range rows {
		out[i] = writeup.JobRequest{Key: r.Key(), Label: r.Description}
	}
	return out
}
