// Package writeup holds the technician write-up rules: task reconciliation
// against authorized VHC work, completion and job status derivation, cause
// entries, section editor tracking and authorized-work pricing.
//
// Nothing in here touches storage or the network; the usecase layer loads
// inputs, calls these functions and persists the results.
package writeup

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TaskSource identifies where a checklist task came from.
type TaskSource string

const (
	TaskSourceRequest TaskSource = "request"
	TaskSourceVHC     TaskSource = "vhc"
	// Any other source value is treated as a manual task.
	TaskSourceManual TaskSource = "manual"
)

// TaskStatus is the checkbox state of a task.
type TaskStatus string

const (
	TaskStatusComplete       TaskStatus = "complete"
	TaskStatusAdditionalWork TaskStatus = "additional_work"
)

// Task is one checklist line of the write-up. Identity is (Source, SourceKey).
type Task struct {
	TaskID    string     `json:"taskId"`
	Source    TaskSource `json:"source"`
	SourceKey string     `json:"sourceKey"`
	Label     string     `json:"label"`
	Status    TaskStatus `json:"status"`
}

// Key returns the composite identity of the task.
func (t Task) Key() string {
	return compositeKey(t.Source, t.SourceKey)
}

func (t Task) IsRequest() bool { return t.Source == TaskSourceRequest }

func (t Task) IsVHC() bool { return t.Source == TaskSourceVHC }

// IsManual reports whether the task is neither request- nor VHC-sourced.
func (t Task) IsManual() bool { return !t.IsRequest() && !t.IsVHC() }

func (t Task) IsComplete() bool { return t.Status == TaskStatusComplete }

func compositeKey(source TaskSource, sourceKey string) string {
	return fmt.Sprintf("%s:%s", source, sourceKey)
}

// NormalizeLabel lowercases the label and collapses every run of
// non-alphanumeric characters into a single space.
func NormalizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	pendingSpace := false
	for _, r := range strings.ToLower(label) {
		if isAlphanumeric(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// CloneTasks returns a copy of tasks that does not share the backing array.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// TaskSignature is a stable fingerprint of the task list used for dirty
// checks. Order matters.
func TaskSignature(tasks []Task) string {
	normalized := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Label = strings.TrimSpace(t.Label)
		normalized[i] = t
	}
	b, _ := json.Marshal(normalized)
	return string(b)
}

// ParseTaskChecklist decodes the JSON checklist column. Blank input yields no tasks.
func ParseTaskChecklist(raw string) ([]Task, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode task checklist: %w", err)
	}
	return tasks, nil
}

// EncodeTaskChecklist encodes tasks for the checklist column.
func EncodeTaskChecklist(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode task checklist: %w", err)
	}
	return string(b), nil
}
