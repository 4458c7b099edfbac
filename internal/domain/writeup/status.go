package writeup

import "strings"

// CompletionStatus summarizes the write-up checklist for display.
type CompletionStatus string

const (
	CompletionComplete              CompletionStatus = "complete"
	CompletionWaitingAdditionalWork CompletionStatus = "waiting_additional_work"
	CompletionAdditionalWork        CompletionStatus = "additional_work"
)

// DeriveCompletionStatus returns complete when there is no VHC work and every
// task is complete, waiting_additional_work when VHC work exists and every
// task is complete, and additional_work otherwise. An empty list is complete.
func DeriveCompletionStatus(tasks []Task) CompletionStatus {
	hasAdditional := false
	allComplete := true
	for _, t := range tasks {
		if t.IsVHC() {
			hasAdditional = true
		}
		if !t.IsComplete() {
			allComplete = false
		}
	}

	switch {
	case allComplete && !hasAdditional:
		return CompletionComplete
	case allComplete:
		return CompletionWaitingAdditionalWork
	default:
		return CompletionAdditionalWork
	}
}

// JobStatus is the workshop-level status of a job card.
type JobStatus string

const (
	JobStatusTechnicianWorkCompleted JobStatus = "Technician Work Completed"
	JobStatusWaitingForParts         JobStatus = "Waiting for Parts"
)

// PartsRequest is the subset of a parts request row the job status rule reads.
type PartsRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

var awaitedPartsStatuses = map[string]struct{}{
	"on-order":       {},
	"on_order":       {},
	"awaiting-stock": {},
	"awaiting_stock": {},
}

// IsAwaitingParts reports whether the parts request status means the part
// has not arrived yet.
func IsAwaitingParts(status string) bool {
	_, ok := awaitedPartsStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// DetermineJobStatusFromTasks returns the job status a saved write-up should
// push, or false when no transition applies.
//
//	no tasks                        -> none
//	all complete, parts awaited     -> Waiting for Parts
//	all complete                    -> Technician Work Completed
//	incomplete, parts awaited       -> Waiting for Parts
//	incomplete                      -> none
func DetermineJobStatusFromTasks(tasks []Task, parts []PartsRequest) (JobStatus, bool) {
	if len(tasks) == 0 {
		return "", false
	}

	partsAwaited := false
	for _, p := range parts {
		if IsAwaitingParts(p.Status) {
			partsAwaited = true
			break
		}
	}

	allComplete := true
	for _, t := range tasks {
		if !t.IsComplete() {
			allComplete = false
			break
		}
	}

	switch {
	case partsAwaited:
		return JobStatusWaitingForParts, true
	case allComplete:
		return JobStatusTechnicianWorkCompleted, true
	default:
		return "", false
	}
}
