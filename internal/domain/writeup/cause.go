package writeup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrCauseTextRequired = errors.New("cause text is required")
	ErrUnknownRequestKey = errors.New("cause must reference a request task")
	ErrDuplicateCause    = errors.New("request already has a cause entry")
	ErrTooManyCauses     = errors.New("more cause entries than request tasks")
	ErrCauseNotFound     = errors.New("cause entry not found")
)

// CauseEntry annotates a request task with the technician's cause text.
type CauseEntry struct {
	ID         string    `json:"id"`
	RequestKey string    `json:"requestKey"`
	Text       string    `json:"text"`
	JobNumber  string    `json:"jobNumber"`
	CreatedBy  string    `json:"createdBy"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func requestKeys(tasks []Task) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, t := range tasks {
		if t.IsRequest() {
			keys[t.SourceKey] = struct{}{}
		}
	}
	return keys
}

// ValidateCauses checks that every entry has text, references a request
// task, no request key appears twice, and there are no more entries than
// request tasks.
func ValidateCauses(entries []CauseEntry, tasks []Task) error {
	keys := requestKeys(tasks)
	if len(entries) > len(keys) {
		return fmt.Errorf("%w: %d entries, %d request tasks", ErrTooManyCauses, len(entries), len(keys))
	}

	used := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Text) == "" {
			return fmt.Errorf("%w (entry %s)", ErrCauseTextRequired, e.ID)
		}
		if _, ok := keys[e.RequestKey]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRequestKey, e.RequestKey)
		}
		if _, dup := used[e.RequestKey]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateCause, e.RequestKey)
		}
		used[e.RequestKey] = struct{}{}
	}
	return nil
}

// AddCause appends entry after validating it against the existing entries
// and the request tasks. The input slice is not modified.
func AddCause(entries []CauseEntry, tasks []Task, entry CauseEntry) ([]CauseEntry, error) {
	entry.Text = strings.TrimSpace(entry.Text)
	if entry.Text == "" {
		return nil, ErrCauseTextRequired
	}
	if _, ok := requestKeys(tasks)[entry.RequestKey]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestKey, entry.RequestKey)
	}
	for _, e := range entries {
		if e.RequestKey == entry.RequestKey {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCause, entry.RequestKey)
		}
	}

	out := make([]CauseEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, entry)
	if err := ValidateCauses(out, tasks); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCause replaces the text of the entry with id.
func UpdateCause(entries []CauseEntry, id, text string, now time.Time) ([]CauseEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCauseTextRequired
	}
	out := make([]CauseEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].ID == id {
			out[i].Text = text
			out[i].UpdatedAt = now
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCauseNotFound, id)
}

// RemoveCause drops the entry with id.
func RemoveCause(entries []CauseEntry, id string) ([]CauseEntry, error) {
	out := make([]CauseEntry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrCauseNotFound, id)
	}
	return out, nil
}

// ParseCauseEntries decodes the JSON cause entries column.
func ParseCauseEntries(raw string) ([]CauseEntry, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []CauseEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode cause entries: %w", err)
	}
	return entries, nil
}

func EncodeCauseEntries(entries []CauseEntry) (string, error) {
	if entries == nil {
		entries = []CauseEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode cause entries: %w", err)
	}
	return string(b), nil
}
