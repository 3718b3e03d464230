package models

// Account represents a named expense or liability bucket tracked by the
// envelope budget. Accounts are created the first time their name appears
// in imported ledger data and are never deleted, only closed. A closed
// account keeps its history but is excluded from future budget seeding
// and backfill.
type Account struct {
	ID     uint   `gorm:"column:account_id;primaryKey"`
	Name   string `gorm:"column:account_name;uniqueIndex;not null"`
	Closed bool   `gorm:"not null;default:false"`
}

// TableName overrides the table name used by GORM.
func (Account) TableName() string { return "accounts" }
