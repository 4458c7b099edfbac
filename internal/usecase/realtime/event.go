// Package realtime fans write-up related table changes out to every
// service instance over redis pub/sub.
package realtime

import "encoding/json"

// Tables whose changes are broadcast.
const (
	TableJobs              = "jobs"
	TableJobWriteups       = "job_writeups"
	TableVHCAuthorizations = "vhc_authorizations"
	TablePartsRequests     = "parts_requests"
)

// Tables lists every broadcast table.
var Tables = []string{TableJobs, TableJobWriteups, TableVHCAuthorizations, TablePartsRequests}

// ChannelFor returns the pub/sub channel carrying the table's changes.
func ChannelFor(table string) string {
	return "realtime:" + table
}

// ChangeEvent describes one change to a row tied to a job.
type ChangeEvent struct {
	Table     string `json:"table"`
	JobID     uint   `json:"jobId"`
	JobNumber string `json:"jobNumber"`
	// Origin identifies the publishing instance.
	Origin string `json:"origin"`
	// Channel and Snapshot are set for job_writeups draft changes.
	Channel  string          `json:"channel,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}
