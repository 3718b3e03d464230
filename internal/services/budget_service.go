package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"budgeteer/internal/beanquery"
	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/logger"
	"budgeteer/internal/models"
	"budgeteer/internal/money"
)

// budgetService governs the budget-period lifecycle:
// draft -> active -> closed.
type budgetService struct {
	db        *gorm.DB
	reconcile ReconcileServicer
	balances  BalanceServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, reconcile ReconcileServicer, balances BalanceServicer) BudgetServicer {
	return &budgetService{db: db, reconcile: reconcile, balances: balances}
}

// Create inserts a draft budget for the period. A second budget for the
// same (year, month) is a constraint violation; callers typically fall
// back to GetByPeriod.
func (s *budgetService) Create(p models.Period) (*models.Budget, error) {
	budget := &models.Budget{Year: p.Year, Month: p.Month}
	if err := s.db.Create(budget).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrBudgetExists, err)
		}
		return nil, classifyStoreError(err)
	}
	return budget, nil
}

// GetByPeriod returns the budget for (year, month).
func (s *budgetService) GetByPeriod(p models.Period) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("year = ? AND month = ?", p.Year, p.Month).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrBudgetNotFound, "no budget for period "+p.String())
		}
		return nil, classifyStoreError(err)
	}
	return &budget, nil
}

// GetByID returns the budget with the given id.
func (s *budgetService) GetByID(id uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, classifyStoreError(err)
	}
	return &budget, nil
}

// Open creates (or reuses) the budget for the period and runs a full
// reconciliation pass against the imported positions: account discovery,
// zero-envelope seeding for every open account, and the spending
// snapshot. The budget stays in draft.
func (s *budgetService) Open(p models.Period, positions []beanquery.Position) (*models.Budget, error) {
	budget, err := s.Create(p)
	if err != nil {
		if !isDuplicate(err) {
			return nil, err
		}
		budget, err = s.GetByPeriod(p)
		if err != nil {
			return nil, err
		}
		logger.Get().Infow("budget already open, reusing", "period", p.String(), "budget_id", budget.ID)
	}
	if budget.Closed {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			"budget "+p.String()+" is closed and cannot be reopened")
	}

	if err := s.reconcile.Reconcile(budget.ID, positions); err != nil {
		return nil, err
	}
	return budget, nil
}

// Activate transitions a draft budget to active. This is the central
// correctness gate: activation requires the allocation balance to be
// exactly zero, so no money is over- or under-allocated.
func (s *budgetService) Activate(budgetID uint) error {
	budget, err := s.GetByID(budgetID)
	if err != nil {
		return err
	}
	if budget.Closed {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot activate a closed budget")
	}
	if budget.Active {
		return apperrors.WithMessage(apperrors.ErrInvalidTransition, "budget is already active")
	}

	balance, err := s.balances.AllocationBalance(budgetID)
	if err != nil {
		return err
	}
	if balance != 0 {
		return apperrors.WithMessage(apperrors.ErrUnbalancedAllocation,
			fmt.Sprintf("allocation balance is %s, expected 0.00", money.Encode(balance)))
	}

	if err := s.db.Model(budget).Update("active", true).Error; err != nil {
		return classifyStoreError(err)
	}
	logger.Get().Infow("budget activated", "period", budget.Period().String(), "budget_id", budget.ID)
	return nil
}

// Close transitions an active budget to closed (terminal) and carries
// every envelope's remaining balance forward into the next calendar
// period as a carry correction: unspent allocation propagates as a
// positive carry, overspend as a negative one. The successor budget is
// created in draft if it does not exist yet. The whole close is one
// transaction; a crash mid-close leaves the budget untouched.
func (s *budgetService) Close(budgetID uint) (*models.Budget, error) {
	budget, err := s.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if budget.Closed {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition, "budget is already closed")
	}
	if !budget.Active {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition, "cannot close a draft budget")
	}

	next := budget.Period().Next()
	var (
		successor models.Budget
		carried   int
	)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var envelopes []models.Envelope
		if err := tx.Where("budget_id = ?", budgetID).Find(&envelopes).Error; err != nil {
			return classifyStoreError(err)
		}

		carries := make(map[uint]money.Amount, len(envelopes))
		for i := range envelopes {
			balance, err := envelopeBalance(tx, &envelopes[i])
			if err != nil {
				return err
			}
			carries[envelopes[i].AccountID] = balance
		}

		if err := tx.Model(budget).
			Updates(map[string]interface{}{"closed": true, "active": false}).Error; err != nil {
			return classifyStoreError(err)
		}

		err := tx.Where("year = ? AND month = ?", next.Year, next.Month).First(&successor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			successor = models.Budget{Year: next.Year, Month: next.Month}
			if err := tx.Create(&successor).Error; err != nil {
				return classifyStoreError(err)
			}
		} else if err != nil {
			return classifyStoreError(err)
		}

		for i := range envelopes {
			carry := models.Correction{
				BudgetID:  successor.ID,
				AccountID: envelopes[i].AccountID,
				Type:      models.CorrectionCarry,
				Value:     carries[envelopes[i].AccountID],
			}
			if err := tx.Create(&carry).Error; err != nil {
				return classifyStoreError(err)
			}
			carried++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("budget closed",
		"period", budget.Period().String(),
		"successor", next.String(),
		"carried_accounts", carried)
	return &successor, nil
}
