package writeup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRequestTasks(t *testing.T) {
	existing := []Task{
		{TaskID: "r1", Source: TaskSourceRequest, SourceKey: "1", Label: "Customer wording edited", Status: TaskStatusComplete},
		{TaskID: "m1", Source: "manual", SourceKey: "m-1", Label: "Road test", Status: TaskStatusAdditionalWork},
	}
	requests := []JobRequest{
		{Key: "1", Label: "Noise from front"},
		{Key: "2", Label: "Annual service"},
		{Key: "2", Label: "Duplicate"},
		{Key: "3", Label: "  "},
		{Key: "", Label: "No key"},
	}

	got := newTestReconciler().EnsureRequestTasks(existing, requests)

	want := append(CloneTasks(existing), Task{
		TaskID: "task-1", Source: TaskSourceRequest, SourceKey: "2", Label: "Annual service", Status: TaskStatusAdditionalWork,
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Customer wording edited", existing[0].Label)
}

func TestEnsureRequestTasks_ThenAuthorizedKeepsRequestsFirst(t *testing.T) {
	r := NewReconciler().ForJob("J1001")
	requests := []JobRequest{{Key: "1", Label: "Noise from front"}}
	items := []AuthorizedItem{{VHCItemID: "vhc-1", Label: "Front pads"}}

	first := r.EnsureAuthorizedTasks(r.EnsureRequestTasks(nil, requests), items)
	second := r.EnsureAuthorizedTasks(r.EnsureRequestTasks(first, requests), items)

	require.Len(t, first, 2)
	assert.Equal(t, TaskSourceRequest, first[0].Source)
	assert.Equal(t, TaskSourceVHC, first[1].Source)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("not idempotent (-first +second):\n%s", diff)
	}
	require.NoError(t, ValidateCauses([]CauseEntry{{ID: "c1", RequestKey: "1", Text: "Worn bush"}}, first))
}
