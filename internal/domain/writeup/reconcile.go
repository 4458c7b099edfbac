package writeup

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LabelCategory classifies an authorized item for label handling during
// reconciliation.
type LabelCategory string

const (
	LabelCategoryGeneral LabelCategory = "general"
	// LabelCategoryServiceReminderOil items were historically stored with a
	// wrong label; the authorization's label always replaces the stored one.
	LabelCategoryServiceReminderOil LabelCategory = "service_reminder_oil"
)

// overridesStoredLabel reports whether the incoming label wins over a label
// already present on the matched task.
func (c LabelCategory) overridesStoredLabel() bool {
	switch c {
	case LabelCategoryServiceReminderOil:
		return true
	default:
		return false
	}
}

// AuthorizedItem is a customer-approved VHC finding.
type AuthorizedItem struct {
	AuthorizationID  string          `json:"authorizationId,omitempty"`
	VHCItemID        string          `json:"vhcItemId,omitempty"`
	RequestID        string          `json:"requestId,omitempty"`
	Source           TaskSource      `json:"source,omitempty"`
	Category         LabelCategory   `json:"category,omitempty"`
	Label            string          `json:"label,omitempty"`
	Description      string          `json:"description,omitempty"`
	IssueDescription string          `json:"issueDescription,omitempty"`
	Status           string          `json:"status,omitempty"`
	PartsCost        decimal.Decimal `json:"partsCost"`
	LabourCost       decimal.Decimal `json:"labourCost"`
}

// DisplayLabel is the first non-blank of Label, Description and IssueDescription.
func (i AuthorizedItem) DisplayLabel() string {
	for _, s := range []string{i.Label, i.Description, i.IssueDescription} {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// IsVHC reports whether the item should produce a VHC task. A blank source
// means VHC.
func (i AuthorizedItem) IsVHC() bool {
	return i.Source == "" || i.Source == TaskSourceVHC
}

// SourceKey is the VHC item id, else the authorization id, else a key
// derived from the normalized label.
func (i AuthorizedItem) SourceKey() string {
	if id := strings.TrimSpace(i.VHCItemID); id != "" {
		return id
	}
	if id := strings.TrimSpace(i.AuthorizationID); id != "" {
		return id
	}
	return "label:" + NormalizeLabel(i.DisplayLabel())
}

func (i AuthorizedItem) initialStatus() TaskStatus {
	switch strings.ToLower(strings.TrimSpace(i.Status)) {
	case "complete", "completed":
		return TaskStatusComplete
	default:
		return TaskStatusAdditionalWork
	}
}

// Reconciler merges authorized items into a task list.
type Reconciler struct {
	scope string
	newID func(scope, sourceKey string) string
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithIDGenerator replaces the task id generator (StableTaskID by default).
func WithIDGenerator(fn func(scope, sourceKey string) string) ReconcilerOption {
	return func(r *Reconciler) {
		r.newID = fn
	}
}

var taskIDNamespace = uuid.MustParse("5f0c2a9e-3b7d-4c1a-9e8f-6d2b1a4c7e30")

// StableTaskID derives the id of a new VHC task from its scope (the job
// number) and source key, so every read of an unsaved checklist hands out
// the same id.
func StableTaskID(scope, sourceKey string) string {
	return uuid.NewSHA1(taskIDNamespace, []byte(scope+":"+sourceKey)).String()
}

func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		newID: StableTaskID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForJob returns a copy of r whose new task ids are scoped to jobNumber.
func (r *Reconciler) ForJob(jobNumber string) *Reconciler {
	c := *r
	c.scope = jobNumber
	return &c
}

var defaultReconciler = NewReconciler()

// EnsureAuthorizedTasks reconciles tasks against items with the default Reconciler.
func EnsureAuthorizedTasks(tasks []Task, items []AuthorizedItem) []Task {
	return defaultReconciler.EnsureAuthorizedTasks(tasks, items)
}

type candidate struct {
	item      AuthorizedItem
	label     string
	sourceKey string
	match     int
}

// EnsureAuthorizedTasks returns request tasks, then the VHC tasks derived
// from items (in item order), then manual tasks. Request and manual tasks
// are passed through untouched. A derived task keeps the id, status and
// label of the existing VHC task it matches, first by (source, sourceKey)
// and then by normalized label. Each existing task is matched at most once
// and key matches are resolved before any label match.
func (r *Reconciler) EnsureAuthorizedTasks(tasks []Task, items []AuthorizedItem) []Task {
	var requestTasks, manualTasks, existing []Task
	for _, t := range tasks {
		switch {
		case t.IsRequest():
			requestTasks = append(requestTasks, t)
		case t.IsVHC():
			existing = append(existing, t)
		default:
			manualTasks = append(manualTasks, t)
		}
	}

	byKey := make(map[string]int, len(existing))
	byLabel := make(map[string][]int, len(existing))
	for idx, t := range existing {
		if _, ok := byKey[t.Key()]; !ok {
			byKey[t.Key()] = idx
		}
		if norm := NormalizeLabel(t.Label); norm != "" {
			byLabel[norm] = append(byLabel[norm], idx)
		}
	}

	seen := make(map[string]struct{}, len(items))
	candidates := make([]candidate, 0, len(items))
	for _, item := range items {
		if !item.IsVHC() {
			continue
		}
		label := item.DisplayLabel()
		if label == "" {
			continue
		}
		sourceKey := item.SourceKey()
		key := compositeKey(TaskSourceVHC, sourceKey)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, candidate{item: item, label: label, sourceKey: sourceKey, match: -1})
	}

	claimed := make([]bool, len(existing))
	for i := range candidates {
		idx, ok := byKey[compositeKey(TaskSourceVHC, candidates[i].sourceKey)]
		if ok && !claimed[idx] {
			candidates[i].match = idx
			claimed[idx] = true
		}
	}
	for i := range candidates {
		if candidates[i].match >= 0 {
			continue
		}
		for _, idx := range byLabel[NormalizeLabel(candidates[i].label)] {
			if !claimed[idx] {
				candidates[i].match = idx
				claimed[idx] = true
				break
			}
		}
	}

	out := make([]Task, 0, len(requestTasks)+len(candidates)+len(manualTasks))
	out = append(out, requestTasks...)
	for _, c := range candidates {
		task := Task{
			Source:    TaskSourceVHC,
			SourceKey: c.sourceKey,
			Label:     c.label,
			Status:    c.item.initialStatus(),
		}
		if c.match >= 0 {
			prev := existing[c.match]
			task.TaskID = prev.TaskID
			if prev.Status != "" {
				task.Status = prev.Status
			}
			if strings.TrimSpace(prev.Label) != "" && !c.item.Category.overridesStoredLabel() {
				task.Label = prev.Label
			}
		}
		if task.TaskID == "" {
			task.TaskID = r.newID(r.scope, c.sourceKey)
		}
		out = append(out, task)
	}
	out = append(out, manualTasks...)

	return out
}
