package writeup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionEditorsRecord(t *testing.T) {
	editors := SectionEditors{}

	require.NoError(t, editors.Record(SectionFault, "Alex"))
	require.NoError(t, editors.Record(SectionFault, " Alex "))
	require.NoError(t, editors.Record(SectionFault, "Jo"))
	require.NoError(t, editors.Record(SectionCause, ""))

	assert.Equal(t, []string{"Alex", "Jo"}, editors[SectionFault])
	assert.Empty(t, editors[SectionCause])
	assert.Error(t, editors.Record(Section("summary"), "Alex"))
}

func TestSectionEditorsCloneAndMerge(t *testing.T) {
	base := SectionEditors{SectionFault: {"Alex"}}
	clone := base.Clone()
	require.NoError(t, clone.Record(SectionFault, "Jo"))
	assert.Equal(t, []string{"Alex"}, base[SectionFault])

	base.Merge(SectionEditors{SectionFault: {"Jo", "Alex"}, SectionRectification: {"Sam"}})
	assert.Equal(t, []string{"Alex", "Jo"}, base[SectionFault])
	assert.Equal(t, []string{"Sam"}, base[SectionRectification])
}

func TestChangedSections(t *testing.T) {
	before := SectionText{Fault: "Knock", Cause: "Bush", Rectification: ""}
	after := SectionText{Fault: "Knock ", Cause: "Drop link", Rectification: "Replaced"}

	assert.Equal(t, []Section{SectionCause, SectionRectification}, ChangedSections(before, after))
	assert.Empty(t, ChangedSections(before, before))
}

func TestSignaturesIgnoreSurroundingWhitespace(t *testing.T) {
	a := SectionText{Fault: "Knock", Cause: "Bush"}
	b := SectionText{Fault: " Knock\n", Cause: "Bush "}
	assert.Equal(t, a.Signature(), b.Signature())
	assert.NotEqual(t, a.Signature(), SectionText{Fault: "Knock"}.Signature())

	e := ExtraFields{OdometerReading: "42000"}
	assert.Equal(t, e.Signature(), ExtraFields{OdometerReading: " 42000 "}.Signature())
}
