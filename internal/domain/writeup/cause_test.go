package writeup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var causeTasks = []Task{
	{TaskID: "t1", Source: TaskSourceRequest, SourceKey: "req-1", Label: "Noise from front", Status: TaskStatusAdditionalWork},
	{TaskID: "t2", Source: TaskSourceRequest, SourceKey: "req-2", Label: "Warning light", Status: TaskStatusAdditionalWork},
	{TaskID: "t3", Source: TaskSourceVHC, SourceKey: "vhc-1", Label: "Pads", Status: TaskStatusAdditionalWork},
}

func TestValidateCauses(t *testing.T) {
	tests := []struct {
		name    string
		entries []CauseEntry
		wantErr error
	}{
		{"empty", nil, nil},
		{"valid", []CauseEntry{{ID: "c1", RequestKey: "req-1", Text: "Worn bush"}, {ID: "c2", RequestKey: "req-2", Text: "Sensor"}}, nil},
		{"blank text", []CauseEntry{{ID: "c1", RequestKey: "req-1", Text: "  "}}, ErrCauseTextRequired},
		{"vhc key", []CauseEntry{{ID: "c1", RequestKey: "vhc-1", Text: "x"}}, ErrUnknownRequestKey},
		{"duplicate", []CauseEntry{{ID: "c1", RequestKey: "req-1", Text: "a"}, {ID: "c2", RequestKey: "req-1", Text: "b"}}, ErrDuplicateCause},
		{"too many", []CauseEntry{
			{ID: "c1", RequestKey: "req-1", Text: "a"},
			{ID: "c2", RequestKey: "req-2", Text: "b"},
			{ID: "c3", RequestKey: "req-3", Text: "c"},
		}, ErrTooManyCauses},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCauses(tt.entries, causeTasks)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAddCause(t *testing.T) {
	entries, err := AddCause(nil, causeTasks, CauseEntry{ID: "c1", RequestKey: "req-1", Text: "  Worn drop link  "})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Worn drop link", entries[0].Text)

	_, err = AddCause(entries, causeTasks, CauseEntry{ID: "c2", RequestKey: "req-1", Text: "again"})
	assert.ErrorIs(t, err, ErrDuplicateCause)

	_, err = AddCause(entries, causeTasks, CauseEntry{ID: "c2", RequestKey: "nope", Text: "x"})
	assert.ErrorIs(t, err, ErrUnknownRequestKey)

	_, err = AddCause(entries, causeTasks, CauseEntry{ID: "c2", RequestKey: "req-2"})
	assert.ErrorIs(t, err, ErrCauseTextRequired)

	more, err := AddCause(entries, causeTasks, CauseEntry{ID: "c2", RequestKey: "req-2", Text: "Faulty sensor"})
	require.NoError(t, err)
	assert.Len(t, more, 2)
	assert.Len(t, entries, 1)
}

func TestUpdateCause(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	entries := []CauseEntry{{ID: "c1", RequestKey: "req-1", Text: "old", CreatedBy: "Sam", UpdatedAt: created}}

	updated, err := UpdateCause(entries, "c1", "new text", now)
	require.NoError(t, err)
	assert.Equal(t, "new text", updated[0].Text)
	assert.Equal(t, now, updated[0].UpdatedAt)
	assert.Equal(t, "Sam", updated[0].CreatedBy)
	assert.Equal(t, "old", entries[0].Text)

	_, err = UpdateCause(entries, "missing", "x", now)
	assert.ErrorIs(t, err, ErrCauseNotFound)

	_, err = UpdateCause(entries, "c1", " ", now)
	assert.ErrorIs(t, err, ErrCauseTextRequired)
}

func TestRemoveCause(t *testing.T) {
	entries := []CauseEntry{{ID: "c1", RequestKey: "req-1", Text: "a"}, {ID: "c2", RequestKey: "req-2", Text: "b"}}

	out, err := RemoveCause(entries, "c1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c2", out[0].ID)

	_, err = RemoveCause(entries, "c9")
	assert.ErrorIs(t, err, ErrCauseNotFound)
}

func TestCauseEntriesColumn(t *testing.T) {
	entries, err := ParseCauseEntries("")
	require.NoError(t, err)
	assert.Nil(t, entries)

	raw, err := EncodeCauseEntries(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	_, err = ParseCauseEntries("{not json")
	assert.Error(t, err)
}
