package models

import (
	"time"

	"budgeteer/internal/money"
)

// CorrectionType classifies an entry in the correction ledger.
type CorrectionType string

const (
	// CorrectionCarry is a carry-forward of a prior period's envelope
	// balance (or the zero baseline written when an account first joins
	// a budget).
	CorrectionCarry CorrectionType = "C"

	// CorrectionAdjustment is one half of a paired transfer between two
	// envelopes. The pair written by a single transfer always sums to
	// zero.
	CorrectionAdjustment CorrectionType = "A"

	// CorrectionSingle is a manual ad hoc correction of arbitrary sign.
	CorrectionSingle CorrectionType = "S"
)

// Valid reports whether the type is one of the known variants.
func (t CorrectionType) Valid() bool {
	switch t {
	case CorrectionCarry, CorrectionAdjustment, CorrectionSingle:
		return true
	}
	return false
}

// Correction is an append-only adjustment to an envelope's effective
// balance. Corrections are never updated or deleted; history is
// reconstructed by summing them.
type Correction struct {
	ID        uint           `gorm:"primaryKey"`
	BudgetID  uint           `gorm:"column:budget_id;not null;index"`
	AccountID uint           `gorm:"column:account_id;not null;index"`
	Type      CorrectionType `gorm:"column:correction_type;type:varchar(1);not null"`
	Value     money.Amount   `gorm:"column:correction_value;not null"`
	CreatedAt time.Time
}

// TableName overrides the table name used by GORM.
func (Correction) TableName() string { return "corrections" }
