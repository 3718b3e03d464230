package models

// Budget represents one monthly budget period. Exactly one budget exists
// per (year, month) pair.
//
// Lifecycle: a budget is created in draft (active=false, closed=false),
// transitions to active once its allocations balance against income, and
// ends closed (terminal; a closed budget is never reopened or mutated).
type Budget struct {
	ID     uint `gorm:"column:budget_id;primaryKey"`
	Year   int  `gorm:"not null;uniqueIndex:idx_budgets_period"`
	Month  int  `gorm:"not null;uniqueIndex:idx_budgets_period"`
	Active bool `gorm:"not null;default:false"`
	Closed bool `gorm:"not null;default:false"`
}

// TableName overrides the table name used by GORM.
func (Budget) TableName() string { return "budgets" }

// Period returns the budget's period value.
func (b *Budget) Period() Period {
	return Period{Year: b.Year, Month: b.Month}
}
