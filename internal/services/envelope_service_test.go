package services

import (
	"testing"

	"gorm.io/gorm"

	"budgeteer/internal/models"
	"budgeteer/internal/testutil"
)

type envelopeFixture struct {
	budget *models.Budget
	rent   *models.Account
	food   *models.Account
}

func setupEnvelopes(t *testing.T, db *gorm.DB) envelopeFixture {
	t.Helper()
	budget := testutil.CreateTestBudget(t, db)
	rent := testutil.CreateTestAccountWithName(t, db, "Expenses:Rent")
	food := testutil.CreateTestAccountWithName(t, db, "Expenses:Food")
	testutil.CreateTestEnvelope(t, db, budget.ID, rent.ID, 80000)
	testutil.CreateTestEnvelope(t, db, budget.ID, food.ID, 20000)
	return envelopeFixture{budget: budget, rent: rent, food: food}
}

func TestSetTarget(t *testing.T) {
	t.Run("editable_while_active", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		testutil.AssertNoError(t, svc.SetTarget(f.budget.ID, "Expenses:Rent", 85000))

		var envelope models.Envelope
		db.Where("budget_id = ? AND account_id = ?", f.budget.ID, f.rent.ID).First(&envelope)
		if envelope.Target != 85000 {
			t.Errorf("expected target 85000, got %d", envelope.Target)
		}
	})

	t.Run("closed_budget_is_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		db.Model(f.budget).Update("closed", true)

		err := svc.SetTarget(f.budget.ID, "Expenses:Rent", 85000)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})

	t.Run("missing_envelope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.CreateTestAccountWithName(t, db, "Expenses:Stray")

		err := svc.SetTarget(f.budget.ID, "Expenses:Stray", 1000)
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})
}

func TestSetBase(t *testing.T) {
	t.Run("editable_in_draft", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)

		testutil.AssertNoError(t, svc.SetBase(f.budget.ID, "Expenses:Food", 25000))

		var envelope models.Envelope
		db.Where("budget_id = ? AND account_id = ?", f.budget.ID, f.food.ID).First(&envelope)
		if envelope.BaseValue != 25000 {
			t.Errorf("expected base 25000, got %d", envelope.BaseValue)
		}
	})

	t.Run("locked_once_active", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		err := svc.SetBase(f.budget.ID, "Expenses:Food", 25000)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})

	t.Run("locked_once_closed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		db.Model(f.budget).Update("closed", true)

		err := svc.SetBase(f.budget.ID, "Expenses:Food", 25000)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestRedistribute(t *testing.T) {
	t.Run("moves_allocation_neutrally", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		balances := NewBalanceService(db)
		f := setupEnvelopes(t, db)
		testutil.CreateTestIncome(t, db, f.budget.ID, 100000)
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		before, err := balances.AllocationBalance(f.budget.ID)
		testutil.AssertNoError(t, err)
		rentBefore, err := balances.EnvelopeBalance(f.budget.ID, f.rent.ID)
		testutil.AssertNoError(t, err)
		foodBefore, err := balances.EnvelopeBalance(f.budget.ID, f.food.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.Redistribute(f.budget.ID, "Expenses:Rent", "Expenses:Food", 5000))

		after, err := balances.AllocationBalance(f.budget.ID)
		testutil.AssertNoError(t, err)
		if after != before {
			t.Errorf("allocation balance changed from %d to %d", before, after)
		}

		rentAfter, _ := balances.EnvelopeBalance(f.budget.ID, f.rent.ID)
		foodAfter, _ := balances.EnvelopeBalance(f.budget.ID, f.food.ID)
		if rentAfter != rentBefore-5000 {
			t.Errorf("expected source balance to drop by 5000, got %d -> %d", rentBefore, rentAfter)
		}
		if foodAfter != foodBefore+5000 {
			t.Errorf("expected destination balance to rise by 5000, got %d -> %d", foodBefore, foodAfter)
		}
	})

	t.Run("draft_budget_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)

		err := svc.Redistribute(f.budget.ID, "Expenses:Rent", "Expenses:Food", 5000)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})

	t.Run("non_positive_amount_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		err := svc.Redistribute(f.budget.ID, "Expenses:Rent", "Expenses:Food", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		err = svc.Redistribute(f.budget.ID, "Expenses:Rent", "Expenses:Food", -100)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("same_account_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		err := svc.Redistribute(f.budget.ID, "Expenses:Rent", "Expenses:Rent", 5000)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_envelope_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.CreateTestAccountWithName(t, db, "Expenses:Stray")
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		err := svc.Redistribute(f.budget.ID, "Expenses:Rent", "Expenses:Stray", 5000)
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})
}

func TestAdjustmentTransfer(t *testing.T) {
	t.Run("pair_sums_to_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		testutil.ActivateTestBudget(t, db, f.budget.ID)

		testutil.AssertNoError(t, svc.AdjustmentTransfer(f.budget.ID, "Expenses:Rent", "Expenses:Food", 3000))

		var pair []models.Correction
		db.Where("budget_id = ? AND correction_type = ?", f.budget.ID, models.CorrectionAdjustment).
			Order("id").Find(&pair)
		if len(pair) != 2 {
			t.Fatalf("expected a correction pair, got %d rows", len(pair))
		}
		if pair[0].Value+pair[1].Value != 0 {
			t.Errorf("expected pair to sum to zero, got %d and %d", pair[0].Value, pair[1].Value)
		}
		if pair[0].AccountID != f.rent.ID || pair[0].Value != -3000 {
			t.Errorf("expected debit of 3000 on source, got %+v", pair[0])
		}
		if pair[1].AccountID != f.food.ID || pair[1].Value != 3000 {
			t.Errorf("expected credit of 3000 on destination, got %+v", pair[1])
		}
	})

	t.Run("shifts_envelope_balances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		balances := NewBalanceService(db)
		f := setupEnvelopes(t, db)

		testutil.AssertNoError(t, svc.AdjustmentTransfer(f.budget.ID, "Expenses:Rent", "Expenses:Food", 3000))

		rent, err := balances.EnvelopeBalance(f.budget.ID, f.rent.ID)
		testutil.AssertNoError(t, err)
		food, err := balances.EnvelopeBalance(f.budget.ID, f.food.ID)
		testutil.AssertNoError(t, err)
		if rent != 77000 {
			t.Errorf("expected source balance 77000, got %d", rent)
		}
		if food != 23000 {
			t.Errorf("expected destination balance 23000, got %d", food)
		}
	})

	t.Run("closed_budget_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		db.Model(f.budget).Update("closed", true)

		err := svc.AdjustmentTransfer(f.budget.ID, "Expenses:Rent", "Expenses:Food", 3000)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestCorrect(t *testing.T) {
	t.Run("appends_single_correction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)

		testutil.AssertNoError(t, svc.Correct(f.budget.ID, "Expenses:Food", -2500))

		var corrections []models.Correction
		db.Where("budget_id = ? AND account_id = ?", f.budget.ID, f.food.ID).Find(&corrections)
		if len(corrections) != 1 {
			t.Fatalf("expected 1 correction, got %d", len(corrections))
		}
		if corrections[0].Type != models.CorrectionSingle {
			t.Errorf("expected single type, got %s", corrections[0].Type)
		}
		if corrections[0].Value != -2500 {
			t.Errorf("expected -2500, got %d", corrections[0].Value)
		}
	})

	t.Run("closed_budget_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		f := setupEnvelopes(t, db)
		db.Model(f.budget).Update("closed", true)

		err := svc.Correct(f.budget.ID, "Expenses:Food", 100)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})
}

func TestCopyAllocations(t *testing.T) {
	setup := func(t *testing.T, db *gorm.DB) (models.Period, models.Period, *models.Account) {
		t.Helper()
		from := models.Period{Year: 2031, Month: 3}
		to := models.Period{Year: 2031, Month: 4}
		source := testutil.CreateTestBudgetForPeriod(t, db, from)
		dest := testutil.CreateTestBudgetForPeriod(t, db, to)
		account := testutil.CreateTestAccountWithName(t, db, "Expenses:Rent")

		src := testutil.CreateTestEnvelope(t, db, source.ID, account.ID, 80000)
		db.Model(src).Updates(map[string]interface{}{"spending": 75000, "target": 90000})
		testutil.CreateTestEnvelope(t, db, dest.ID, account.ID, 0)
		return from, to, account
	}

	destEnvelope := func(t *testing.T, db *gorm.DB, to models.Period, accountID uint) models.Envelope {
		t.Helper()
		var budget models.Budget
		if err := db.Where("year = ? AND month = ?", to.Year, to.Month).First(&budget).Error; err != nil {
			t.Fatalf("failed to load destination budget: %v", err)
		}
		var envelope models.Envelope
		if err := db.Where("budget_id = ? AND account_id = ?", budget.ID, accountID).
			First(&envelope).Error; err != nil {
			t.Fatalf("failed to load destination envelope: %v", err)
		}
		return envelope
	}

	t.Run("copies_base_values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		from, to, account := setup(t, db)

		testutil.AssertNoError(t, svc.CopyAllocations(from, to, CopyBase, false))

		envelope := destEnvelope(t, db, to, account.ID)
		if envelope.BaseValue != 80000 {
			t.Errorf("expected base 80000, got %d", envelope.BaseValue)
		}
		if envelope.Target != 0 {
			t.Errorf("expected target untouched, got %d", envelope.Target)
		}
	})

	t.Run("copies_spending_as_base", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		from, to, account := setup(t, db)

		testutil.AssertNoError(t, svc.CopyAllocations(from, to, CopySpending, false))

		envelope := destEnvelope(t, db, to, account.ID)
		if envelope.BaseValue != 75000 {
			t.Errorf("expected base 75000 from prior spending, got %d", envelope.BaseValue)
		}
	})

	t.Run("copies_targets_when_requested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		from, to, account := setup(t, db)

		testutil.AssertNoError(t, svc.CopyAllocations(from, to, CopyBase, true))

		envelope := destEnvelope(t, db, to, account.ID)
		if envelope.Target != 90000 {
			t.Errorf("expected target 90000, got %d", envelope.Target)
		}
	})

	t.Run("invalid_mode_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		from, to, _ := setup(t, db)

		err := svc.CopyAllocations(from, to, CopyMode("bogus"), false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("active_destination_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))
		from, to, _ := setup(t, db)
		var dest models.Budget
		db.Where("year = ? AND month = ?", to.Year, to.Month).First(&dest)
		testutil.ActivateTestBudget(t, db, dest.ID)

		err := svc.CopyAllocations(from, to, CopyBase, false)
		testutil.AssertAppError(t, err, "INVALID_TRANSITION")
	})

	t.Run("missing_source_period_fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewEnvelopeService(db, NewAccountService(db))

		err := svc.CopyAllocations(models.Period{Year: 1990, Month: 1}, models.Period{Year: 1990, Month: 2}, CopyBase, false)
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})
}
