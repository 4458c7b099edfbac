// Package autosave keeps a live draft of a write-up per job and saves each
// part of it after the user stops typing.
package autosave

import (
	"fmt"
	"time"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// Channel is an independently debounced part of the draft.
type Channel string

const (
	ChannelFields Channel = "fields"
	ChannelTasks  Channel = "tasks"
	ChannelExtras Channel = "extras"
)

// Channels lists every channel in flush order.
var Channels = []Channel{ChannelFields, ChannelTasks, ChannelExtras}

func ParseChannel(s string) (Channel, error) {
	switch ch := Channel(s); ch {
	case ChannelFields, ChannelTasks, ChannelExtras:
		return ch, nil
	default:
		return "", fmt.Errorf("unknown draft channel %q", s)
	}
}

// Delays holds the debounce delay per channel.
type Delays struct {
	Fields time.Duration
	Tasks  time.Duration
	Extras time.Duration
}

// DefaultDelays are the form's autosave delays.
var DefaultDelays = Delays{
	Fields: 600 * time.Millisecond,
	Tasks:  800 * time.Millisecond,
	Extras: 800 * time.Millisecond,
}

func (d Delays) For(ch Channel) time.Duration {
	switch ch {
	case ChannelFields:
		return d.Fields
	case ChannelTasks:
		return d.Tasks
	default:
		return d.Extras
	}
}

// Draft is the local, possibly unsaved, state of the write-up form.
type Draft struct {
	Fields writeup.SectionText `json:"fields"`
	Tasks  []writeup.Task      `json:"tasks"`
	Extras writeup.ExtraFields `json:"extras"`
}

func (d Draft) Clone() Draft {
	d.Tasks = writeup.CloneTasks(d.Tasks)
	return d
}

// Signature fingerprints one channel of the draft.
func (d Draft) Signature(ch Channel) string {
	switch ch {
	case ChannelFields:
		return d.Fields.Signature()
	case ChannelTasks:
		return writeup.TaskSignature(d.Tasks)
	default:
		return d.Extras.Signature()
	}
}

// merge copies the channel's part of other into d.
func (d *Draft) merge(ch Channel, other Draft) {
	switch ch {
	case ChannelFields:
		d.Fields = other.Fields
	case ChannelTasks:
		d.Tasks = writeup.CloneTasks(other.Tasks)
	default:
		d.Extras = other.Extras
	}
}

// Snapshot is what a debounced save hands to the Saver.
type Snapshot struct {
	Channel Channel
	Editor  string
	Draft   Draft
}
