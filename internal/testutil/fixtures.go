package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"budgeteer/internal/models"
	"budgeteer/internal/money"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an open account with a unique ledger-style name.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithName(t, db, fmt.Sprintf("Expenses:Test%d", nextID()))
}

// CreateTestAccountWithName creates an open account with the given name.
func CreateTestAccountWithName(t *testing.T, db *gorm.DB, name string) *models.Account {
	t.Helper()

	account := &models.Account{Name: name}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestBudget creates a draft budget for a unique period.
func CreateTestBudget(t *testing.T, db *gorm.DB) *models.Budget {
	t.Helper()

	// Spread periods over months and years so (year, month) stays unique.
	n := nextID()
	return CreateTestBudgetForPeriod(t, db, models.Period{
		Year:  2100 + int(n/12),
		Month: int(n%12) + 1,
	})
}

// CreateTestBudgetForPeriod creates a draft budget for the given period.
func CreateTestBudgetForPeriod(t *testing.T, db *gorm.DB, p models.Period) *models.Budget {
	t.Helper()

	budget := &models.Budget{Year: p.Year, Month: p.Month}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestEnvelope creates an envelope with the given base value.
func CreateTestEnvelope(t *testing.T, db *gorm.DB, budgetID, accountID uint, base money.Amount) *models.Envelope {
	t.Helper()

	envelope := &models.Envelope{
		BudgetID:  budgetID,
		AccountID: accountID,
		BaseValue: base,
	}
	if err := db.Create(envelope).Error; err != nil {
		t.Fatalf("failed to create test envelope: %v", err)
	}
	return envelope
}

// CreateTestIncome sets the income row for a budget.
func CreateTestIncome(t *testing.T, db *gorm.DB, budgetID uint, amount money.Amount) *models.Income {
	t.Helper()

	income := &models.Income{BudgetID: budgetID, Income: amount}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestCorrection appends a correction row.
func CreateTestCorrection(t *testing.T, db *gorm.DB, budgetID, accountID uint, corrType models.CorrectionType, value money.Amount) *models.Correction {
	t.Helper()

	correction := &models.Correction{
		BudgetID:  budgetID,
		AccountID: accountID,
		Type:      corrType,
		Value:     value,
	}
	if err := db.Create(correction).Error; err != nil {
		t.Fatalf("failed to create test correction: %v", err)
	}
	return correction
}

// ActivateTestBudget flips a budget straight to active, bypassing the gate.
func ActivateTestBudget(t *testing.T, db *gorm.DB, budgetID uint) {
	t.Helper()

	if err := db.Model(&models.Budget{}).Where("budget_id = ?", budgetID).
		Update("active", true).Error; err != nil {
		t.Fatalf("failed to activate test budget: %v", err)
	}
}
