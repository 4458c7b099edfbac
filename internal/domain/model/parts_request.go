package model

import (
	"time"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// PartsRequest is a part ordered for a job. Status values include
// "requested", "on-order", "awaiting-stock", "arrived" and "fitted".
type PartsRequest struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       uint      `gorm:"not null;index" json:"job_id"`
	PartNumber  string    `gorm:"size:64" json:"part_number"`
	Description string    `gorm:"size:500" json:"description"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Status      string    `gorm:"size:32;not null;default:'requested'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PartsRequest) TableName() string {
	return "parts_requests"
}

// PartsRequestsForStatus converts rows into the job status rule input.
func PartsRequestsForStatus(rows []PartsRequest) []writeup.PartsRequest {
	out := make([]writeup.PartsRequest, len(rows))
	for i, r := range rows {
		out[i] = writeup.PartsRequest{ID: r.PartNumber, Status: r.Status}
	}
	return out
}
