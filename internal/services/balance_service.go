package services

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/models"
	"budgeteer/internal/money"
)

// balanceService provides the pure read-side balance computations.
type balanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB) BalanceServicer {
	return &balanceService{db: db}
}

// sumCorrections totals the correction ledger for one envelope.
func sumCorrections(tx *gorm.DB, budgetID, accountID uint) (money.Amount, error) {
	var total int64
	err := tx.Model(&models.Correction{}).
		Where("budget_id = ? AND account_id = ?", budgetID, accountID).
		Select("COALESCE(SUM(correction_value), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, classifyStoreError(err)
	}
	return money.Amount(total), nil
}

// sumBaseValues totals the planned allocation across a budget's envelopes.
func sumBaseValues(tx *gorm.DB, budgetID uint) (money.Amount, error) {
	var total int64
	err := tx.Model(&models.Envelope{}).
		Where("budget_id = ?", budgetID).
		Select("COALESCE(SUM(base_value), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, classifyStoreError(err)
	}
	return money.Amount(total), nil
}

// envelopeBalance computes base_value + corrections - spending for one
// envelope row within the given transaction.
func envelopeBalance(tx *gorm.DB, envelope *models.Envelope) (money.Amount, error) {
	corrections, err := sumCorrections(tx, envelope.BudgetID, envelope.AccountID)
	if err != nil {
		return 0, err
	}
	return envelope.BaseValue + corrections - envelope.Spending, nil
}

// budgetIncome reads the income row for a budget.
func budgetIncome(tx *gorm.DB, budgetID uint) (money.Amount, error) {
	var row models.Income
	if err := tx.Where("budget_id = ?", budgetID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrIncomeNotFound
		}
		return 0, classifyStoreError(err)
	}
	return row.Income, nil
}

// AllocationBalance returns income minus the total base allocation across
// the budget's envelopes. Zero means the budget is exactly allocated; the
// comparison at the activation gate is exact integer equality.
func (s *balanceService) AllocationBalance(budgetID uint) (money.Amount, error) {
	var balance money.Amount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		income, err := budgetIncome(tx, budgetID)
		if err != nil {
			return err
		}
		allocated, err := sumBaseValues(tx, budgetID)
		if err != nil {
			return err
		}
		balance = income - allocated
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// EnvelopeBalance returns the amount still available to spend in one
// envelope. Negative means overspent.
func (s *balanceService) EnvelopeBalance(budgetID, accountID uint) (money.Amount, error) {
	var balance money.Amount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var envelope models.Envelope
		if err := tx.Where("budget_id = ? AND account_id = ?", budgetID, accountID).
			First(&envelope).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrEnvelopeNotFound
			}
			return classifyStoreError(err)
		}

		b, err := envelopeBalance(tx, &envelope)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Balances returns the per-account balance report for a budget, ordered
// by account name. The whole computation runs in one transaction so no
// interleaved write can be observed mid-report.
func (s *balanceService) Balances(budgetID uint) ([]BalanceRow, error) {
	var rows []BalanceRow
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var envelopes []models.Envelope
		if err := tx.Where("budget_id = ?", budgetID).Find(&envelopes).Error; err != nil {
			return classifyStoreError(err)
		}

		for i := range envelopes {
			envelope := &envelopes[i]

			var account models.Account
			if err := tx.First(&account, envelope.AccountID).Error; err != nil {
				return classifyStoreError(err)
			}
			corrections, err := sumCorrections(tx, budgetID, envelope.AccountID)
			if err != nil {
				return err
			}

			rows = append(rows, BalanceRow{
				AccountID:   account.ID,
				AccountName: account.Name,
				Target:      envelope.Target,
				BaseValue:   envelope.BaseValue,
				Corrections: corrections,
				Spending:    envelope.Spending,
				Balance:     envelope.BaseValue + corrections - envelope.Spending,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountName < rows[j].AccountName })
	return rows, nil
}

// AllocationSummary aggregates income against total allocation.
func (s *balanceService) AllocationSummary(budgetID uint) (*AllocationSummary, error) {
	var summary AllocationSummary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		income, err := budgetIncome(tx, budgetID)
		if err != nil {
			return err
		}
		allocated, err := sumBaseValues(tx, budgetID)
		if err != nil {
			return err
		}
		summary = AllocationSummary{
			Income:    income,
			Allocated: allocated,
			Balance:   income - allocated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
