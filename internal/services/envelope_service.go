package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/models"
	"budgeteer/internal/money"
)

// envelopeService handles envelope field edits and the correction ledger.
type envelopeService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewEnvelopeService creates a new EnvelopeServicer.
func NewEnvelopeService(db *gorm.DB, accounts AccountServicer) EnvelopeServicer {
	return &envelopeService{db: db, accounts: accounts}
}

// loadBudget fetches a budget inside the given transaction.
func loadBudget(tx *gorm.DB, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := tx.First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, classifyStoreError(err)
	}
	return &budget, nil
}

// loadEnvelope fetches the envelope for (budget, account) inside the
// given transaction.
func loadEnvelope(tx *gorm.DB, budgetID, accountID uint) (*models.Envelope, error) {
	var envelope models.Envelope
	if err := tx.Where("budget_id = ? AND account_id = ?", budgetID, accountID).
		First(&envelope).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEnvelopeNotFound
		}
		return nil, classifyStoreError(err)
	}
	return &envelope, nil
}

// SetTarget sets the planned ceiling of an envelope. Targets stay
// editable while the budget is active; only a closed budget is immutable.
func (s *envelopeService) SetTarget(budgetID uint, accountName string, amount money.Amount) error {
	account, err := s.accounts.GetByName(accountName)
	if err != nil {
		return err
	}

	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return err
	}
	if budget.Closed {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot edit a closed budget")
	}

	envelope, err := loadEnvelope(s.db, budgetID, account.ID)
	if err != nil {
		return err
	}
	if err := s.db.Model(envelope).Update("target", amount).Error; err != nil {
		return classifyStoreError(err)
	}
	return nil
}

// SetBase sets the planned allocation of an envelope. Base values are
// only editable while the budget is in draft: once activation has
// verified that allocations balance against income, direct base edits
// would silently break that guarantee, so post-activation reallocation
// must go through Redistribute instead.
func (s *envelopeService) SetBase(budgetID uint, accountName string, amount money.Amount) error {
	account, err := s.accounts.GetByName(accountName)
	if err != nil {
		return err
	}

	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return err
	}
	if budget.Closed {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot edit a closed budget")
	}
	if budget.Active {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition,
			"base allocations are locked once the budget is active; use redistribute")
	}

	envelope, err := loadEnvelope(s.db, budgetID, account.ID)
	if err != nil {
		return err
	}
	if err := s.db.Model(envelope).Update("base_value", amount).Error; err != nil {
		return classifyStoreError(err)
	}
	return nil
}

// Redistribute moves allocation between two envelopes of an active
// budget: the source base_value decreases and the destination increases
// by the same amount, in one transaction. Net allocation is unchanged,
// so the activation guarantee holds without re-validation.
func (s *envelopeService) Redistribute(budgetID uint, fromName, toName string, amount money.Amount) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "redistribution amount must be positive")
	}
	if fromName == toName {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot redistribute to the same account")
	}

	from, err := s.accounts.GetByName(fromName)
	if err != nil {
		return err
	}
	to, err := s.accounts.GetByName(toName)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		budget, err := loadBudget(tx, budgetID)
		if err != nil {
			return err
		}
		if budget.Closed {
			return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot edit a closed budget")
		}
		if !budget.Active {
			return apperrors.WithMessage(apperrors.ErrInvalidTransition,
				"redistribution applies to an active budget; edit base values directly in draft")
		}

		source, err := loadEnvelope(tx, budgetID, from.ID)
		if err != nil {
			return err
		}
		dest, err := loadEnvelope(tx, budgetID, to.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(source).Update("base_value", source.BaseValue-amount).Error; err != nil {
			return classifyStoreError(err)
		}
		if err := tx.Model(dest).Update("base_value", dest.BaseValue+amount).Error; err != nil {
			return classifyStoreError(err)
		}
		return nil
	})
}

// AdjustmentTransfer appends the paired adjustment corrections moving
// effective balance between two envelopes: a debit on the source and a
// matching credit on the destination. The pair always sums to zero and
// both rows land together or not at all.
func (s *envelopeService) AdjustmentTransfer(budgetID uint, fromName, toName string, amount money.Amount) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer amount must be positive")
	}
	if fromName == toName {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot transfer to the same account")
	}

	from, err := s.accounts.GetByName(fromName)
	if err != nil {
		return err
	}
	to, err := s.accounts.GetByName(toName)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		budget, err := loadBudget(tx, budgetID)
		if err != nil {
			return err
		}
		if budget.Closed {
			return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot edit a closed budget")
		}

		if _, err := loadEnvelope(tx, budgetID, from.ID); err != nil {
			return err
		}
		if _, err := loadEnvelope(tx, budgetID, to.ID); err != nil {
			return err
		}

		pair := []models.Correction{
			{BudgetID: budgetID, AccountID: from.ID, Type: models.CorrectionAdjustment, Value: -amount},
			{BudgetID: budgetID, AccountID: to.ID, Type: models.CorrectionAdjustment, Value: amount},
		}
		if err := tx.Create(&pair).Error; err != nil {
			return classifyStoreError(err)
		}
		return nil
	})
}

// Correct appends a single manual correction of arbitrary sign. Unlike
// adjustment transfers it is not required to net to zero.
func (s *envelopeService) Correct(budgetID uint, accountName string, amount money.Amount) error {
	account, err := s.accounts.GetByName(accountName)
	if err != nil {
		return err
	}

	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return err
	}
	if budget.Closed {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot edit a closed budget")
	}

	correction := models.Correction{
		BudgetID:  budgetID,
		AccountID: account.ID,
		Type:      models.CorrectionSingle,
		Value:     amount,
	}
	if err := s.db.Create(&correction).Error; err != nil {
		return classifyStoreError(err)
	}
	return nil
}

// CopyAllocations copies figures from the source period's envelopes into
// the destination period's, keyed by account. Mode selects whether the
// source base_value or its spending becomes the destination base_value;
// targets are copied when copyTargets is set. Destination envelopes
// without a source counterpart are left untouched.
func (s *envelopeService) CopyAllocations(from, to models.Period, mode CopyMode, copyTargets bool) error {
	if !mode.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "copy mode must be base or spending")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var source, dest models.Budget
		if err := tx.Where("year = ? AND month = ?", from.Year, from.Month).First(&source).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrBudgetNotFound, "no budget for period "+from.String())
			}
			return classifyStoreError(err)
		}
		if err := tx.Where("year = ? AND month = ?", to.Year, to.Month).First(&dest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.WithMessage(apperrors.ErrBudgetNotFound, "no budget for period "+to.String())
			}
			return classifyStoreError(err)
		}
		if dest.Closed {
			return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot edit a closed budget")
		}
		if dest.Active {
			return apperrors.WithMessage(apperrors.ErrInvalidTransition,
				"base allocations are locked once the budget is active")
		}

		var envelopes []models.Envelope
		if err := tx.Where("budget_id = ?", source.ID).Find(&envelopes).Error; err != nil {
			return classifyStoreError(err)
		}

		for i := range envelopes {
			src := &envelopes[i]

			value := src.BaseValue
			if mode == CopySpending {
				value = src.Spending
			}

			updates := map[string]interface{}{"base_value": value}
			if copyTargets {
				updates["target"] = src.Target
			}

			result := tx.Model(&models.Envelope{}).
				Where("budget_id = ? AND account_id = ?", dest.ID, src.AccountID).
				Updates(updates)
			if result.Error != nil {
				return classifyStoreError(result.Error)
			}
		}
		return nil
	})
}
