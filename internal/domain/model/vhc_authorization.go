package model

import (
	"database/sql/driver"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// AuthorizationDecision is the customer's answer to a VHC finding.
type AuthorizationDecision string

const (
	DecisionPending    AuthorizationDecision = "pending"
	DecisionAuthorized AuthorizationDecision = "authorized"
	DecisionDeclined   AuthorizationDecision = "declined"
)

// Scan implements sql.Scanner interface
func (d *AuthorizationDecision) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*d = AuthorizationDecision(v)
	case []byte:
		*d = AuthorizationDecision(v)
	default:
		*d = DecisionPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (d AuthorizationDecision) Value() (driver.Value, error) {
	return string(d), nil
}

// VHCAuthorization is one VHC finding with the customer's decision and the
// quoted parts and labour.
type VHCAuthorization struct {
	ID               uint                  `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID            uint                  `gorm:"not null;index" json:"job_id"`
	VHCItemID        string                `gorm:"size:64;index" json:"vhc_item_id"`
	RequestID        string                `gorm:"size:64" json:"request_id"`
	Source           string                `gorm:"size:32" json:"source"`
	Category         string                `gorm:"size:64;not null;default:'general'" json:"category"`
	Label            string                `gorm:"size:500" json:"label"`
	Description      string                `gorm:"type:text" json:"description"`
	IssueDescription string                `gorm:"type:text" json:"issue_description"`
	Decision         AuthorizationDecision `gorm:"size:32;not null;default:'pending'" json:"decision"`
	WorkStatus       string                `gorm:"size:32" json:"work_status"`
	PartsCost        decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0" json:"parts_cost"`
	LabourCost       decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0" json:"labour_cost"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func (VHCAuthorization) TableName() string {
	return "vhc_authorizations"
}

// AuthorizedItem converts the row into the reconciliation input.
func (a VHCAuthorization) AuthorizedItem() writeup.AuthorizedItem {
	return writeup.AuthorizedItem{
		AuthorizationID:  strconv.FormatUint(uint64(a.ID), 10),
		VHCItemID:        a.VHCItemID,
		RequestID:        a.RequestID,
		Source:           writeup.TaskSource(a.Source),
		Category:         writeup.LabelCategory(a.Category),
		Label:            a.Label,
		Description:      a.Description,
		IssueDescription: a.IssueDescription,
		Status:           a.WorkStatus,
		PartsCost:        a.PartsCost,
		LabourCost:       a.LabourCost,
	}
}
