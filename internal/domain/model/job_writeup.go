package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// Columns of job_writeups touched by partial saves.
const (
	ColumnFault               = "fault"
	ColumnCause               = "cause"
	ColumnRectification       = "rectification"
	ColumnTaskChecklist       = "task_checklist"
	ColumnCauseEntries        = "cause_entries"
	ColumnCompletionStatus    = "completion_status"
	ColumnWarrantyClaimNumber = "warranty_claim_number"
	ColumnOdometerReading     = "odometer_reading"
	ColumnAdditionalNotes     = "additional_notes"
	ColumnSectionEditors      = "section_editors"
	ColumnUpdatedBy           = "updated_by"
	ColumnUpdatedAt           = "updated_at"
)

// JobWriteup is the technician write-up of a job. One row per job.
type JobWriteup struct {
	ID                  uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID               uint           `gorm:"uniqueIndex;not null" json:"job_id"`
	JobNumber           string         `gorm:"size:32;index" json:"job_number"`
	Fault               string         `gorm:"type:text" json:"fault"`
	Cause               string         `gorm:"type:text" json:"cause"`
	Rectification       string         `gorm:"type:text" json:"rectification"`
	TaskChecklist       string         `gorm:"type:text" json:"task_checklist"`
	CauseEntries        string         `gorm:"type:text" json:"cause_entries"`
	SectionEditors      datatypes.JSON `json:"section_editors"`
	CompletionStatus    string         `gorm:"size:32" json:"completion_status"`
	WarrantyClaimNumber string         `gorm:"size:64" json:"warranty_claim_number"`
	OdometerReading     string         `gorm:"size:32" json:"odometer_reading"`
	AdditionalNotes     string         `gorm:"type:text" json:"additional_notes"`
	UpdatedBy           string         `gorm:"size:200" json:"updated_by"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (JobWriteup) TableName() string {
	return "job_writeups"
}

// Tasks decodes the checklist column.
func (w *JobWriteup) Tasks() ([]writeup.Task, error) {
	return writeup.ParseTaskChecklist(w.TaskChecklist)
}

func (w *JobWriteup) SetTasks(tasks []writeup.Task) error {
	raw, err := writeup.EncodeTaskChecklist(tasks)
	if err != nil {
		return err
	}
	w.TaskChecklist = raw
	return nil
}

func (w *JobWriteup) Causes() ([]writeup.CauseEntry, error) {
	return writeup.ParseCauseEntries(w.CauseEntries)
}

func (w *JobWriteup) SetCauses(entries []writeup.CauseEntry) error {
	raw, err := writeup.EncodeCauseEntries(entries)
	if err != nil {
		return err
	}
	w.CauseEntries = raw
	return nil
}

// Editors decodes section_editors. A NULL column yields an empty map.
func (w *JobWriteup) Editors() (writeup.SectionEditors, error) {
	editors := writeup.SectionEditors{}
	if len(w.SectionEditors) == 0 || string(w.SectionEditors) == "null" {
		return editors, nil
	}
	if err := json.Unmarshal(w.SectionEditors, &editors); err != nil {
		return nil, fmt.Errorf("decode section editors: %w", err)
	}
	return editors, nil
}

func (w *JobWriteup) SetEditors(editors writeup.SectionEditors) error {
	raw, err := EncodeEditors(editors)
	if err != nil {
		return err
	}
	w.SectionEditors = raw
	return nil
}

// EncodeEditors encodes editors for the section_editors column.
func EncodeEditors(editors writeup.SectionEditors) (datatypes.JSON, error) {
	if editors == nil {
		editors = writeup.SectionEditors{}
	}
	raw, err := json.Marshal(editors)
	if err != nil {
		return nil, fmt.Errorf("encode section editors: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// Sections returns the free-text sections.
func (w *JobWriteup) Sections() writeup.SectionText {
	return writeup.SectionText{
		Fault:         w.Fault,
		Cause:         w.Cause,
		Rectification: w.Rectification,
	}
}

func (w *JobWriteup) Extras() writeup.ExtraFields {
	return writeup.ExtraFields{
		WarrantyClaimNumber: w.WarrantyClaimNumber,
		OdometerReading:     w.OdometerReading,
		AdditionalNotes:     w.AdditionalNotes,
	}
}
