package writeup

import "strings"

// JobRequest is a customer request written on the job card.
type JobRequest struct {
	Key   string
	Label string
}

// EnsureRequestTasks adds a request task for every job request the checklist
// does not carry yet. Existing tasks come back untouched and in order, and
// request tasks are never removed. New tasks follow in request order with
// additional_work status. Requests without a key or label are skipped.
func (r *Reconciler) EnsureRequestTasks(tasks []Task, requests []JobRequest) []Task {
	have := requestKeys(tasks)
	out := CloneTasks(tasks)
	for _, req := range requests {
		key := strings.TrimSpace(req.Key)
		label := strings.TrimSpace(req.Label)
		if key == "" || label == "" {
			continue
		}
		if _, ok := have[key]; ok {
			continue
		}
		have[key] = struct{}{}
		out = append(out, Task{
			TaskID:    r.newID(r.scope, string(TaskSourceRequest)+":"+key),
			Source:    TaskSourceRequest,
			SourceKey: key,
			Label:     label,
			Status:    TaskStatusAdditionalWork,
		})
	}
	return out
}
