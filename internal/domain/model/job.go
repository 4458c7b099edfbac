package model

import (
	"database/sql/driver"
	"time"
)

// JobStatus is the workshop status of a job card.
type JobStatus string

const (
	JobStatusBooked                  JobStatus = "Booked"
	JobStatusInProgress              JobStatus = "In Progress"
	JobStatusWaitingForParts         JobStatus = "Waiting for Parts"
	JobStatusTechnicianWorkCompleted JobStatus = "Technician Work Completed"
	JobStatusInvoiced                JobStatus = "Invoiced"
)

// Scan implements sql.Scanner interface
func (s *JobStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = JobStatus(v)
	case []byte:
		*s = JobStatus(v)
	default:
		*s = JobStatusBooked
	}
	return nil
}

// Value implements driver.Valuer interface
func (s JobStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Job is a workshop job card.
type Job struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	JobNumber           string     `gorm:"uniqueIndex;not null;size:32" json:"job_number"`
	Status              JobStatus  `gorm:"size:64;not null;default:'Booked'" json:"status"`
	Registration        string     `gorm:"size:16" json:"registration"`
	CustomerName        string     `gorm:"size:200" json:"customer_name"`
	ServiceAdvisorName  string     `gorm:"size:200" json:"service_advisor_name"`
	ServiceAdvisorEmail string     `gorm:"size:320" json:"service_advisor_email"`
	ClosedAt            *time.Time `json:"closed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Job) TableName() string {
	return "jobs"
}

// JobStatusHistory records every applied job status transition.
type JobStatusHistory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID      uint      `gorm:"not null;index" json:"job_id"`
	FromStatus JobStatus `gorm:"size:64" json:"from_status"`
	ToStatus   JobStatus `gorm:"size:64;not null" json:"to_status"`
	ChangedBy  string    `gorm:"size:200" json:"changed_by"`
	Reason     string    `gorm:"size:200" json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func (JobStatusHistory) TableName() string {
	return "job_status_history"
}
