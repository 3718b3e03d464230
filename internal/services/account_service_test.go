package services

import (
	"testing"

	"budgeteer/internal/testutil"
)

func TestGetOrCreate(t *testing.T) {
	t.Run("creates_on_first_sight", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		account, created, err := svc.GetOrCreate("Expenses:Rent")
		testutil.AssertNoError(t, err)
		if !created {
			t.Error("expected account to be created")
		}
		if account.ID == 0 {
			t.Fatal("expected non-zero account ID")
		}
		if account.Closed {
			t.Error("expected new account to be open")
		}
	})

	t.Run("is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		first, _, err := svc.GetOrCreate("Expenses:Food")
		testutil.AssertNoError(t, err)

		second, created, err := svc.GetOrCreate("Expenses:Food")
		testutil.AssertNoError(t, err)
		if created {
			t.Error("expected lookup, not creation")
		}
		if first.ID != second.ID {
			t.Errorf("expected same account ID, got %d and %d", first.ID, second.ID)
		}
	})

	t.Run("rejects_empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, _, err := svc.GetOrCreate("")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetByName(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		fixture := testutil.CreateTestAccountWithName(t, db, "Expenses:Books")

		account, err := svc.GetByName("Expenses:Books")
		testutil.AssertNoError(t, err)
		if account.ID != fixture.ID {
			t.Errorf("expected account %d, got %d", fixture.ID, account.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		_, err := svc.GetByName("Expenses:Nope")
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})
}

func TestCloseAccount(t *testing.T) {
	t.Run("excludes_from_open_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		testutil.CreateTestAccountWithName(t, db, "Expenses:Keep")
		testutil.CreateTestAccountWithName(t, db, "Expenses:Drop")

		testutil.AssertNoError(t, svc.CloseAccount("Expenses:Drop"))

		open, err := svc.ListOpen()
		testutil.AssertNoError(t, err)
		if len(open) != 1 {
			t.Fatalf("expected 1 open account, got %d", len(open))
		}
		if open[0].Name != "Expenses:Keep" {
			t.Errorf("expected Expenses:Keep, got %s", open[0].Name)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		testutil.CreateTestAccountWithName(t, db, "Expenses:Twice")

		testutil.AssertNoError(t, svc.CloseAccount("Expenses:Twice"))
		testutil.AssertNoError(t, svc.CloseAccount("Expenses:Twice"))
	})

	t.Run("unknown_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)

		err := svc.CloseAccount("Expenses:Ghost")
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})
}
