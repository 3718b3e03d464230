package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgeteer/internal/beanquery"
	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/logger"
	"budgeteer/internal/models"
	"budgeteer/internal/money"
	"budgeteer/internal/uuid"
)

// reconcileService merges externally-imported account positions into the
// envelope store.
type reconcileService struct {
	db *gorm.DB
}

// NewReconcileService creates a new ReconcileServicer.
func NewReconcileService(db *gorm.DB) ReconcileServicer {
	return &reconcileService{db: db}
}

// ensureBudgetOpen rejects reconciliation against a closed budget. A
// closed budget's envelopes, corrections and income are immutable, and
// every import entry point must enforce that, not just Open.
func ensureBudgetOpen(tx *gorm.DB, budgetID uint) error {
	budget, err := loadBudget(tx, budgetID)
	if err != nil {
		return err
	}
	if budget.Closed {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot reconcile a closed budget")
	}
	return nil
}

// SyncAccounts looks up or creates an account for every imported
// position. A newly created account gets a zero carry correction in the
// given budget as its baseline entry. Calling it twice with the same
// positions is a no-op the second time.
func (s *reconcileService) SyncAccounts(budgetID uint, positions []beanquery.Position) error {
	runID := uuid.New()
	log := logger.Get().With("run_id", runID, "budget_id", budgetID)

	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureBudgetOpen(tx, budgetID); err != nil {
			return err
		}
		for _, pos := range positions {
			var account models.Account
			err := tx.Where("account_name = ?", pos.Account).First(&account).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return classifyStoreError(err)
			}

			account = models.Account{Name: pos.Account}
			if err := tx.Create(&account).Error; err != nil {
				return classifyStoreError(err)
			}
			carry := models.Correction{
				BudgetID:  budgetID,
				AccountID: account.ID,
				Type:      models.CorrectionCarry,
				Value:     0,
			}
			if err := tx.Create(&carry).Error; err != nil {
				return classifyStoreError(err)
			}
			created++
			log.Infow("discovered account", "account", pos.Account, "account_id", account.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Infow("account sync complete", "positions", len(positions), "created", created)
	return nil
}

// BackfillNewAccounts inserts a zero-valued envelope for every open
// account that lacks one in the given budget. This is how accounts
// discovered mid-period join an already-open budget without disturbing
// existing allocations. An account that has no carry baseline in the
// budget yet also gets a zero carry correction.
func (s *reconcileService) BackfillNewAccounts(budgetID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureBudgetOpen(tx, budgetID); err != nil {
			return err
		}

		var accounts []models.Account
		if err := tx.Where("closed = ?", false).Find(&accounts).Error; err != nil {
			return classifyStoreError(err)
		}

		for _, account := range accounts {
			var count int64
			if err := tx.Model(&models.Envelope{}).
				Where("budget_id = ? AND account_id = ?", budgetID, account.ID).
				Count(&count).Error; err != nil {
				return classifyStoreError(err)
			}
			if count > 0 {
				continue
			}

			envelope := models.Envelope{BudgetID: budgetID, AccountID: account.ID}
			if err := tx.Create(&envelope).Error; err != nil {
				return classifyStoreError(err)
			}

			var carries int64
			if err := tx.Model(&models.Correction{}).
				Where("budget_id = ? AND account_id = ? AND correction_type = ?",
					budgetID, account.ID, models.CorrectionCarry).
				Count(&carries).Error; err != nil {
				return classifyStoreError(err)
			}
			if carries == 0 {
				carry := models.Correction{
					BudgetID:  budgetID,
					AccountID: account.ID,
					Type:      models.CorrectionCarry,
					Value:     0,
				}
				if err := tx.Create(&carry).Error; err != nil {
					return classifyStoreError(err)
				}
			}
		}
		return nil
	})
}

// ApplyIncome upserts the budget's income row. The imported figure
// follows the source ledger convention of reporting income as a negative
// outflow, so the stored value is sign-inverted. Repeated imports
// overwrite: the last reconciliation wins.
func (s *reconcileService) ApplyIncome(budgetID uint, imported money.Amount) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureBudgetOpen(tx, budgetID); err != nil {
			return err
		}

		row := models.Income{BudgetID: budgetID, Income: -imported}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "budget_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"income"}),
		}).Create(&row).Error
		if err != nil {
			return classifyStoreError(err)
		}
		return nil
	})
}

// ApplySpending overwrites the spending figure of every envelope whose
// account appears in the imported positions. Each import is a full
// snapshot for the period, not a delta; positions for accounts without
// an envelope in this budget are skipped.
func (s *reconcileService) ApplySpending(budgetID uint, positions []beanquery.Position) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureBudgetOpen(tx, budgetID); err != nil {
			return err
		}

		for _, pos := range positions {
			var account models.Account
			err := tx.Where("account_name = ?", pos.Account).First(&account).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Get().Debugw("spending import for unknown account skipped", "account", pos.Account)
				continue
			}
			if err != nil {
				return classifyStoreError(err)
			}

			result := tx.Model(&models.Envelope{}).
				Where("budget_id = ? AND account_id = ?", budgetID, account.ID).
				Update("spending", pos.Amount)
			if result.Error != nil {
				return classifyStoreError(result.Error)
			}
		}
		return nil
	})
}

// Reconcile runs a full import pass for a budget: account discovery,
// envelope backfill, then the spending snapshot.
func (s *reconcileService) Reconcile(budgetID uint, positions []beanquery.Position) error {
	if err := s.SyncAccounts(budgetID, positions); err != nil {
		return err
	}
	if err := s.BackfillNewAccounts(budgetID); err != nil {
		return err
	}
	return s.ApplySpending(budgetID, positions)
}
