package models

import "budgeteer/internal/money"

// Income holds the amount available to allocate in one budget period.
// The source ledger reports income as a negative outflow figure; the
// stored value is the positive available-income amount. Repeated imports
// overwrite it (last reconciliation wins).
type Income struct {
	BudgetID uint         `gorm:"column:budget_id;primaryKey;autoIncrement:false"`
	Income   money.Amount `gorm:"not null"`
}

// TableName overrides the table name used by GORM.
func (Income) TableName() string { return "income" }
