package writeup

import (
	"fmt"
	"strings"
)

// Section is a free-text section of the write-up.
type Section string

const (
	SectionFault         Section = "fault"
	SectionCause         Section = "cause"
	SectionRectification Section = "rectification"
)

// Sections lists the write-up sections in display order.
var Sections = []Section{SectionFault, SectionCause, SectionRectification}

func (s Section) Valid() bool {
	switch s {
	case SectionFault, SectionCause, SectionRectification:
		return true
	default:
		return false
	}
}

// SectionEditors records who touched each section. Lists are append-only
// and hold each display name once.
type SectionEditors map[Section][]string

// Record appends name to the section's editors unless it is already there.
// Blank names are ignored.
func (e SectionEditors) Record(section Section, name string) error {
	if !section.Valid() {
		return fmt.Errorf("unknown write-up section %q", section)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for _, existing := range e[section] {
		if existing == name {
			return nil
		}
	}
	e[section] = append(e[section], name)
	return nil
}

// Clone returns a deep copy.
func (e SectionEditors) Clone() SectionEditors {
	out := make(SectionEditors, len(e))
	for k, v := range e {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Merge records every name of other into e, keeping e's order first.
func (e SectionEditors) Merge(other SectionEditors) {
	for _, section := range Sections {
		for _, name := range other[section] {
			_ = e.Record(section, name)
		}
	}
}

// SectionText holds the three free-text sections.
type SectionText struct {
	Fault         string `json:"fault"`
	Cause         string `json:"cause"`
	Rectification string `json:"rectification"`
}

func (t SectionText) Get(section Section) string {
	switch section {
	case SectionFault:
		return t.Fault
	case SectionCause:
		return t.Cause
	case SectionRectification:
		return t.Rectification
	default:
		return ""
	}
}

// ChangedSections lists the sections whose trimmed text differs between
// before and after.
func ChangedSections(before, after SectionText) []Section {
	var changed []Section
	for _, s := range Sections {
		if strings.TrimSpace(before.Get(s)) != strings.TrimSpace(after.Get(s)) {
			changed = append(changed, s)
		}
	}
	return changed
}
