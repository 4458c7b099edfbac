package writeup

import (
	"encoding/json"
	"strings"
)

// ExtraFields is the extra metadata block of the write-up form.
type ExtraFields struct {
	WarrantyClaimNumber string `json:"warrantyClaimNumber"`
	OdometerReading     string `json:"odometerReading"`
	AdditionalNotes     string `json:"additionalNotes"`
}

// Signature fingerprints the trimmed field values.
func (e ExtraFields) Signature() string {
	return signature(ExtraFields{
		WarrantyClaimNumber: strings.TrimSpace(e.WarrantyClaimNumber),
		OdometerReading:     strings.TrimSpace(e.OdometerReading),
		AdditionalNotes:     strings.TrimSpace(e.AdditionalNotes),
	})
}

// Signature fingerprints the trimmed section texts.
func (t SectionText) Signature() string {
	return signature(SectionText{
		Fault:         strings.TrimSpace(t.Fault),
		Cause:         strings.TrimSpace(t.Cause),
		Rectification: strings.TrimSpace(t.Rectification),
	})
}

func signature(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
