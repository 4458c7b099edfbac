package writeup

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(prefix string) func(string, string) string {
	n := 0
	return func(string, string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestReconciler() *Reconciler {
	return NewReconciler(WithIDGenerator(sequentialIDs("task")))
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Replace brake pads", "replace brake pads"},
		{"  Replace -- Brake/Pads!! ", "replace brake pads"},
		{"N/S/F tyre (4mm)", "n s f tyre 4mm"},
		{"", ""},
		{"***", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.in))
		})
	}
}

func TestEnsureAuthorizedTasks_RequestOnlyNoItems(t *testing.T) {
	tasks := []Task{{TaskID: "r1", Source: TaskSourceRequest, SourceKey: "req-1", Label: "Service", Status: TaskStatusComplete}}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, nil)

	if diff := cmp.Diff(tasks, got); diff != "" {
		t.Fatalf("tasks changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, CompletionComplete, DeriveCompletionStatus(got))
}

func TestEnsureAuthorizedTasks_AddsNewAuthorizedItem(t *testing.T) {
	items := []AuthorizedItem{{VHCItemID: "vhc-7", Label: "Replace brake pads"}}

	got := newTestReconciler().EnsureAuthorizedTasks(nil, items)

	want := []Task{{
		TaskID:    "task-1",
		Source:    TaskSourceVHC,
		SourceKey: "vhc-7",
		Label:     "Replace brake pads",
		Status:    TaskStatusAdditionalWork,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tasks (-want +got):\n%s", diff)
	}
}

func TestEnsureAuthorizedTasks_DropsItemsWithoutLabel(t *testing.T) {
	items := []AuthorizedItem{
		{VHCItemID: "vhc-1", Label: "   "},
		{VHCItemID: "vhc-2"},
		{VHCItemID: "vhc-3", Label: "Wiper blades"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(nil, items)

	require.Len(t, got, 1)
	assert.Equal(t, "vhc-3", got[0].SourceKey)
}

func TestEnsureAuthorizedTasks_LabelFallsBackToDescription(t *testing.T) {
	items := []AuthorizedItem{
		{AuthorizationID: "auth-1", Description: "Front discs worn"},
		{AuthorizationID: "auth-2", IssueDescription: "Battery weak"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(nil, items)

	require.Len(t, got, 2)
	assert.Equal(t, "Front discs worn", got[0].Label)
	assert.Equal(t, "auth-1", got[0].SourceKey)
	assert.Equal(t, "Battery weak", got[1].Label)
}

func TestEnsureAuthorizedTasks_SkipsNonVHCItems(t *testing.T) {
	items := []AuthorizedItem{
		{VHCItemID: "vhc-1", Source: TaskSourceRequest, Label: "Customer request"},
		{VHCItemID: "vhc-2", Source: TaskSourceVHC, Label: "Tyres"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(nil, items)

	require.Len(t, got, 1)
	assert.Equal(t, "vhc-2", got[0].SourceKey)
}

func TestEnsureAuthorizedTasks_KeepsRequestAndManualOrder(t *testing.T) {
	tasks := []Task{
		{TaskID: "m1", Source: "manual", SourceKey: "m-1", Label: "Road test", Status: TaskStatusAdditionalWork},
		{TaskID: "r1", Source: TaskSourceRequest, SourceKey: "req-1", Label: "MOT", Status: TaskStatusComplete},
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-old", Label: "Old item", Status: TaskStatusAdditionalWork},
		{TaskID: "r2", Source: TaskSourceRequest, SourceKey: "req-2", Label: "Service", Status: TaskStatusAdditionalWork},
		{TaskID: "m2", Source: "workshop", SourceKey: "m-2", Label: "Valet", Status: TaskStatusComplete},
	}
	items := []AuthorizedItem{{VHCItemID: "vhc-new", Label: "Brake fluid"}}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, items)

	ids := make([]string, len(got))
	for i, task := range got {
		ids[i] = task.TaskID
	}
	assert.Equal(t, []string{"r1", "r2", "task-1", "m1", "m2"}, ids)
}

func TestEnsureAuthorizedTasks_KeyMatchPreservesLocalEdits(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-9", Label: "Brake pads (front only)", Status: TaskStatusComplete},
	}
	items := []AuthorizedItem{{VHCItemID: "vhc-9", Label: "Replace brake pads"}}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, items)

	want := []Task{{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-9", Label: "Brake pads (front only)", Status: TaskStatusComplete}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tasks (-want +got):\n%s", diff)
	}
}

func TestEnsureAuthorizedTasks_LabelFallbackMatch(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "label:replace wiper blades", Label: "Replace wiper-blades", Status: TaskStatusComplete},
	}
	items := []AuthorizedItem{{AuthorizationID: "auth-3", Label: "replace wiper blades"}}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, items)

	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].TaskID)
	assert.Equal(t, "auth-3", got[0].SourceKey)
	assert.Equal(t, "Replace wiper-blades", got[0].Label)
	assert.Equal(t, TaskStatusComplete, got[0].Status)
}

func TestEnsureAuthorizedTasks_LabelFallbackClaimsTaskOnce(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "legacy", Label: "Tyre", Status: TaskStatusComplete},
	}
	items := []AuthorizedItem{
		{AuthorizationID: "auth-1", Label: "Tyre"},
		{AuthorizationID: "auth-2", Label: "tyre!"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, items)

	require.Len(t, got, 2)
	assert.Equal(t, "v1", got[0].TaskID)
	assert.Equal(t, TaskStatusComplete, got[0].Status)
	assert.Equal(t, "task-1", got[1].TaskID)
	assert.Equal(t, TaskStatusAdditionalWork, got[1].Status)
}

func TestEnsureAuthorizedTasks_KeyMatchWinsOverEarlierLabelMatch(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-2", Label: "Oil leak", Status: TaskStatusComplete},
	}
	items := []AuthorizedItem{
		{VHCItemID: "vhc-1", Label: "Oil leak"},
		{VHCItemID: "vhc-2", Label: "Oil leak rocker cover"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, items)

	require.Len(t, got, 2)
	assert.Equal(t, "task-1", got[0].TaskID)
	assert.Equal(t, "v1", got[1].TaskID)
}

func TestEnsureAuthorizedTasks_ServiceReminderOilLabelIsCorrected(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-5", Label: "Service reminder", Status: TaskStatusAdditionalWork},
		{TaskID: "v2", Source: TaskSourceVHC, SourceKey: "vhc-6", Label: "My wording", Status: TaskStatusAdditionalWork},
	}
	items := []AuthorizedItem{
		{VHCItemID: "vhc-5", Category: LabelCategoryServiceReminderOil, Label: "Oil and filter service"},
		{VHCItemID: "vhc-6", Category: LabelCategoryGeneral, Label: "Their wording"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, items)

	require.Len(t, got, 2)
	assert.Equal(t, "Oil and filter service", got[0].Label)
	assert.Equal(t, "My wording", got[1].Label)
}

func TestEnsureAuthorizedTasks_DropsUnauthorizedVHCTasks(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-1", Label: "Declined item", Status: TaskStatusAdditionalWork},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(tasks, []AuthorizedItem{})

	assert.Empty(t, got)
}

func TestEnsureAuthorizedTasks_DuplicateItemKeysKeepFirst(t *testing.T) {
	items := []AuthorizedItem{
		{VHCItemID: "vhc-1", Label: "First"},
		{VHCItemID: "vhc-1", Label: "Second"},
	}

	got := newTestReconciler().EnsureAuthorizedTasks(nil, items)

	require.Len(t, got, 1)
	assert.Equal(t, "First", got[0].Label)
}

func TestEnsureAuthorizedTasks_CompletedAuthorizationStartsComplete(t *testing.T) {
	items := []AuthorizedItem{{VHCItemID: "vhc-1", Label: "Bulb", Status: "Completed"}}

	got := newTestReconciler().EnsureAuthorizedTasks(nil, items)

	require.Len(t, got, 1)
	assert.Equal(t, TaskStatusComplete, got[0].Status)
}

func TestEnsureAuthorizedTasks_Idempotent(t *testing.T) {
	tasks := []Task{
		{TaskID: "r1", Source: TaskSourceRequest, SourceKey: "req-1", Label: "Service", Status: TaskStatusComplete},
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-1", Label: "Edited pads", Status: TaskStatusComplete},
		{TaskID: "v2", Source: TaskSourceVHC, SourceKey: "old-key", Label: "Wipers", Status: TaskStatusAdditionalWork},
		{TaskID: "m1", Source: "manual", SourceKey: "m-1", Label: "Road test", Status: TaskStatusAdditionalWork},
	}
	items := []AuthorizedItem{
		{VHCItemID: "vhc-1", Label: "Replace brake pads"},
		{AuthorizationID: "auth-9", Label: "wipers"},
		{VHCItemID: "vhc-3", Label: "Coolant"},
		{VHCItemID: "vhc-4", Category: LabelCategoryServiceReminderOil, Label: "Oil service"},
		{VHCItemID: "vhc-5"},
	}

	r := newTestReconciler()
	once := r.EnsureAuthorizedTasks(tasks, items)
	twice := r.EnsureAuthorizedTasks(once, items)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second reconciliation changed tasks (-once +twice):\n%s", diff)
	}
	assert.Equal(t, TaskSignature(once), TaskSignature(twice))
}

func TestEnsureAuthorizedTasks_DoesNotMutateInput(t *testing.T) {
	tasks := []Task{
		{TaskID: "v1", Source: TaskSourceVHC, SourceKey: "vhc-1", Label: "Pads", Status: TaskStatusAdditionalWork},
	}
	before := CloneTasks(tasks)

	_ = newTestReconciler().EnsureAuthorizedTasks(tasks, []AuthorizedItem{{VHCItemID: "vhc-1", Category: LabelCategoryServiceReminderOil, Label: "New"}})

	assert.Equal(t, before, tasks)
}

func TestEnsureAuthorizedTasks_NewTaskIDsAreStablePerJob(t *testing.T) {
	items := []AuthorizedItem{{VHCItemID: "vhc-1", Label: "Front pads"}, {Label: "Wiper blades"}}
	r := NewReconciler()

	first := r.ForJob("J1001").EnsureAuthorizedTasks(nil, items)
	second := r.ForJob("J1001").EnsureAuthorizedTasks(nil, items)
	other := r.ForJob("J2002").EnsureAuthorizedTasks(nil, items)

	require.Len(t, first, 2)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second read differs (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, first[0].TaskID, first[1].TaskID)
	assert.Equal(t, StableTaskID("J1001", "vhc-1"), first[0].TaskID)
	assert.NotEqual(t, first[0].TaskID, other[0].TaskID)
}
