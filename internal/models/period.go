package models

import (
	"fmt"
	"time"
)

// Period identifies one budget month. It is passed explicitly into every
// operation that needs a period, never held as ambient state.
type Period struct {
	Year  int
	Month int
}

// CurrentPeriod returns the period containing the given time.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// Next returns the following calendar period, rolling month 12 over into
// January of the next year.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Prev returns the preceding calendar period.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// String returns the period in YYYY-MM form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
