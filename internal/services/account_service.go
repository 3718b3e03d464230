package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// GetOrCreate looks up an account by name, creating it on first sight.
// The second return value reports whether the account was created. The
// operation is idempotent: an existing name is returned as-is, never
// duplicated.
func (s *accountService) GetOrCreate(name string) (*models.Account, bool, error) {
	if name == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	var account models.Account
	err := s.db.Where("account_name = ?", name).First(&account).Error
	if err == nil {
		return &account, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, classifyStoreError(err)
	}

	account = models.Account{Name: name}
	if err := s.db.Create(&account).Error; err != nil {
		return nil, false, classifyStoreError(err)
	}
	return &account, true, nil
}

// GetByName returns the account with the given name.
func (s *accountService) GetByName(name string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("account_name = ?", name).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrAccountNotFound, "account not found: "+name)
		}
		return nil, classifyStoreError(err)
	}
	return &account, nil
}

// GetByID returns the account with the given id.
func (s *accountService) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, classifyStoreError(err)
	}
	return &account, nil
}

// ListOpen returns all accounts that are not closed, ordered by name.
func (s *accountService) ListOpen() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("closed = ?", false).Order("account_name").Find(&accounts).Error; err != nil {
		return nil, classifyStoreError(err)
	}
	return accounts, nil
}

// CloseAccount marks an account closed. Closed accounts keep their
// history but are excluded from future budget seeding and backfill.
func (s *accountService) CloseAccount(name string) error {
	account, err := s.GetByName(name)
	if err != nil {
		return err
	}
	if account.Closed {
		return nil
	}
	if err := s.db.Model(account).Update("closed", true).Error; err != nil {
		return classifyStoreError(err)
	}
	return nil
}
