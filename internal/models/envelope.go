package models

import "budgeteer/internal/money"

// Envelope is the planned/actual tracking record for one account within
// one budget period: a planned ceiling (Target), the allocated amount
// (BaseValue) and the actual spending imported from the ledger.
//
// Spending is a full snapshot for the period: every reconciliation import
// overwrites it rather than accumulating deltas.
type Envelope struct {
	BudgetID  uint         `gorm:"column:budget_id;primaryKey;autoIncrement:false"`
	AccountID uint         `gorm:"column:account_id;primaryKey;autoIncrement:false"`
	Target    money.Amount `gorm:"not null;default:0"`
	BaseValue money.Amount `gorm:"column:base_value;not null;default:0"`
	Spending  money.Amount `gorm:"not null;default:0"`
}

// TableName overrides the table name used by GORM.
func (Envelope) TableName() string { return "budget_base" }
