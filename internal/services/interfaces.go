package services

import (
	"budgeteer/internal/beanquery"
	"budgeteer/internal/models"
	"budgeteer/internal/money"
)

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	GetOrCreate(name string) (*models.Account, bool, error)
	GetByName(name string) (*models.Account, error)
	GetByID(id uint) (*models.Account, error)
	ListOpen() ([]models.Account, error)
	CloseAccount(name string) error
}

// BudgetServicer defines the contract for the budget-period lifecycle.
type BudgetServicer interface {
	Create(p models.Period) (*models.Budget, error)
	GetByPeriod(p models.Period) (*models.Budget, error)
	GetByID(id uint) (*models.Budget, error)
	Open(p models.Period, positions []beanquery.Position) (*models.Budget, error)
	Activate(budgetID uint) error
	Close(budgetID uint) (*models.Budget, error)
}

// CopyMode selects which figure CopyAllocations carries over from the
// source period's envelopes.
type CopyMode string

const (
	CopyBase     CopyMode = "base"
	CopySpending CopyMode = "spending"
)

// Valid reports whether the mode is one of the known variants.
func (m CopyMode) Valid() bool {
	return m == CopyBase || m == CopySpending
}

// EnvelopeServicer defines the contract for envelope edits and the
// correction ledger.
type EnvelopeServicer interface {
	SetTarget(budgetID uint, accountName string, amount money.Amount) error
	SetBase(budgetID uint, accountName string, amount money.Amount) error
	Redistribute(budgetID uint, fromName, toName string, amount money.Amount) error
	AdjustmentTransfer(budgetID uint, fromName, toName string, amount money.Amount) error
	Correct(budgetID uint, accountName string, amount money.Amount) error
	CopyAllocations(from, to models.Period, mode CopyMode, copyTargets bool) error
}

// ReconcileServicer defines the contract for merging imported ledger
// positions into the envelope store.
type ReconcileServicer interface {
	SyncAccounts(budgetID uint, positions []beanquery.Position) error
	BackfillNewAccounts(budgetID uint) error
	ApplyIncome(budgetID uint, imported money.Amount) error
	ApplySpending(budgetID uint, positions []beanquery.Position) error
	Reconcile(budgetID uint, positions []beanquery.Position) error
}

// BalanceRow is one line of the per-account balance report.
type BalanceRow struct {
	AccountID   uint
	AccountName string
	Target      money.Amount
	BaseValue   money.Amount
	Corrections money.Amount
	Spending    money.Amount
	Balance     money.Amount
}

// AllocationSummary aggregates a budget's income against its allocations.
type AllocationSummary struct {
	Income    money.Amount
	Allocated money.Amount
	Balance   money.Amount
}

// BalanceServicer defines the read-side balance computations.
type BalanceServicer interface {
	AllocationBalance(budgetID uint) (money.Amount, error)
	EnvelopeBalance(budgetID, accountID uint) (money.Amount, error)
	Balances(budgetID uint) ([]BalanceRow, error)
	AllocationSummary(budgetID uint) (*AllocationSummary, error)
}
