package beanquery

import (
	"fmt"
	"os"
	"os/exec"

	"budgeteer/internal/logger"
	"budgeteer/internal/models"
)

// Runner invokes the external ledger query tool and materializes its
// output. Reads always go through the report file on disk, so a failed
// import can be inspected after the fact.
type Runner struct {
	Bin        string
	LedgerFile string
	ReportFile string
}

// NewRunner creates a runner for the given binary, ledger and report paths.
func NewRunner(bin, ledgerFile, reportFile string) *Runner {
	return &Runner{Bin: bin, LedgerFile: ledgerFile, ReportFile: reportFile}
}

// Run executes the query against the ledger and writes the raw report to
// the report file.
func (r *Runner) Run(query string) error {
	logger.Get().Debugw("running ledger query", "bin", r.Bin, "query", query)

	out, err := exec.Command(r.Bin, r.LedgerFile, query).Output()
	if err != nil {
		return fmt.Errorf("ledger query failed: %w", err)
	}

	if err := os.WriteFile(r.ReportFile, out, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// Positions parses the materialized report file.
func (r *Runner) Positions() ([]Position, error) {
	f, err := os.Open(r.ReportFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer f.Close()

	return ParseReport(f)
}

// FetchPositions runs the query and parses the resulting report.
func (r *Runner) FetchPositions(query string) ([]Position, error) {
	if err := r.Run(query); err != nil {
		return nil, err
	}
	return r.Positions()
}

// ExpensesQuery returns the balance query for expense and liability
// accounts in the given period. Interest payments are tracked by the
// ledger itself, not the envelope budget.
func ExpensesQuery(p models.Period) string {
	return fmt.Sprintf(
		"balances where account ~ 'Expenses' or (account ~ 'Liabilities' and not 'Expenses:Interest' in other_accounts) and month = %d and year = %d",
		p.Month, p.Year)
}

// IncomeQuery returns the aggregate income query for the given period.
// Postings tagged Exclude stay out of the budgetable income figure.
func IncomeQuery(p models.Period) string {
	return fmt.Sprintf(
		"select 'Income',sum(position) where month = %d and year = %d and account ~ 'Income' and not 'Exclude' in tags group by 'Income'",
		p.Month, p.Year)
}
