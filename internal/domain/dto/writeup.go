package dto

import (
	"encoding/json"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// WriteupView is the write-up as returned to clients
type WriteupView struct {
	JobNumber        string                   `json:"jobNumber"`
	JobStatus        string                   `json:"jobStatus"`
	Fault            string                   `json:"fault"`
	Cause            string                   `json:"cause"`
	Rectification    string                   `json:"rectification"`
	Tasks            []writeup.Task           `json:"tasks"`
	Causes           []writeup.CauseEntry     `json:"causes"`
	SectionEditors   writeup.SectionEditors   `json:"sectionEditors"`
	Extras           writeup.ExtraFields      `json:"extras"`
	CompletionStatus writeup.CompletionStatus `json:"completionStatus"`
	Pricing          writeup.PricingSummary   `json:"pricing"`
	UpdatedBy        string                   `json:"updatedBy,omitempty"`
}

// SaveWriteupRequest is the full form submitted on save
type SaveWriteupRequest struct {
	Fault         string              `json:"fault" validate:"max=10000"`
	Cause         string              `json:"cause" validate:"max=10000"`
	Rectification string              `json:"rectification" validate:"max=10000"`
	Tasks         []TaskInput         `json:"tasks" validate:"dive"`
	Causes        []CauseInput        `json:"causes" validate:"dive"`
	Extras        writeup.ExtraFields `json:"extras"`
}

type TaskInput struct {
	TaskID    string `json:"taskId"`
	Source    string `json:"source" validate:"required,max=32"`
	SourceKey string `json:"sourceKey" validate:"required,max=200"`
	Label     string `json:"label" validate:"max=500"`
	Status    string `json:"status" validate:"required,oneof=complete additional_work"`
}

type CauseInput struct {
	ID         string `json:"id"`
	RequestKey string `json:"requestKey" validate:"required"`
	Text       string `json:"text" validate:"required,max=2000"`
	CreatedBy  string `json:"createdBy"`
}

// StatusTransition is a job status change applied by a save
type StatusTransition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SaveWriteupResponse struct {
	Writeup    *WriteupView      `json:"writeup"`
	Transition *StatusTransition `json:"transition,omitempty"`
}

// StatusView is the completion summary of a write-up
type StatusView struct {
	JobNumber        string                   `json:"jobNumber"`
	CompletionStatus writeup.CompletionStatus `json:"completionStatus"`
	JobStatus        string                   `json:"jobStatus"`
	SuggestedStatus  string                   `json:"suggestedStatus,omitempty"`
}

type AddCauseRequest struct {
	RequestKey string `json:"requestKey" validate:"required"`
	Text       string `json:"text" validate:"required,max=2000"`
}

type UpdateCauseRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// DraftPatchRequest carries a draft channel snapshot as raw JSON; the
// channel decides its shape.
type DraftPatchRequest struct {
	Snapshot json.RawMessage `json:"snapshot" validate:"required"`
}

// DraftView is the local state of a live draft session
type DraftView struct {
	JobNumber string              `json:"jobNumber"`
	Fields    writeup.SectionText `json:"fields"`
	Tasks     []writeup.Task      `json:"tasks"`
	Extras    writeup.ExtraFields `json:"extras"`
	Pending   []string            `json:"pending"`
}

// ToTasks converts the submitted task inputs
func ToTasks(in []TaskInput) []writeup.Task {
	out := make([]writeup.Task, len(in))
	for i, t := range in {
		out[i] = writeup.Task{
			TaskID:    t.TaskID,
			Source:    writeup.TaskSource(t.Source),
			SourceKey: t.SourceKey,
			Label:     t.Label,
			Status:    writeup.TaskStatus(t.Status),
		}
	}
	return out
}
