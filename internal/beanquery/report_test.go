package beanquery

import (
	"strings"
	"testing"

	"budgeteer/internal/models"
	"budgeteer/internal/testutil"
)

const sampleReport = `account                  balance
-----------------------  -------
Expenses:Rent            800.00  EUR
Expenses:Food            150.50  EUR
Liabilities:CreditCard   -20.00  EUR
`

func TestParseReport(t *testing.T) {
	t.Run("parses_positions", func(t *testing.T) {
		positions, err := ParseReport(strings.NewReader(sampleReport))
		testutil.AssertNoError(t, err)

		if len(positions) != 3 {
			t.Fatalf("expected 3 positions, got %d", len(positions))
		}
		if positions[0].Account != "Expenses:Rent" {
			t.Errorf("expected Expenses:Rent, got %s", positions[0].Account)
		}
		if positions[0].Amount != 80000 {
			t.Errorf("expected 80000 minor units, got %d", positions[0].Amount)
		}
		if positions[1].Amount != 15050 {
			t.Errorf("expected 15050 minor units, got %d", positions[1].Amount)
		}
		if positions[2].Amount != -2000 {
			t.Errorf("expected -2000 minor units, got %d", positions[2].Amount)
		}
		if positions[2].Currency != "EUR" {
			t.Errorf("expected EUR, got %s", positions[2].Currency)
		}
	})

	t.Run("tolerates_blank_lines", func(t *testing.T) {
		report := sampleReport + "\n\n   \n"
		positions, err := ParseReport(strings.NewReader(report))
		testutil.AssertNoError(t, err)
		if len(positions) != 3 {
			t.Errorf("expected 3 positions, got %d", len(positions))
		}
	})

	t.Run("header_only_report_is_empty", func(t *testing.T) {
		report := "account  balance\n-------  -------\n"
		positions, err := ParseReport(strings.NewReader(report))
		testutil.AssertNoError(t, err)
		if len(positions) != 0 {
			t.Errorf("expected no positions, got %d", len(positions))
		}
	})

	t.Run("empty_input_is_empty", func(t *testing.T) {
		positions, err := ParseReport(strings.NewReader(""))
		testutil.AssertNoError(t, err)
		if len(positions) != 0 {
			t.Errorf("expected no positions, got %d", len(positions))
		}
	})

	t.Run("malformed_amount_aborts", func(t *testing.T) {
		report := "h\n-\nExpenses:Rent  800.123  EUR\n"
		_, err := ParseReport(strings.NewReader(report))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("wrong_field_count_aborts", func(t *testing.T) {
		report := "h\n-\nExpenses:Rent  800.00\n"
		_, err := ParseReport(strings.NewReader(report))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("income_report_row", func(t *testing.T) {
		report := "account  balance\n-------  -------\nIncome  -2500.00  EUR\n"
		positions, err := ParseReport(strings.NewReader(report))
		testutil.AssertNoError(t, err)
		if len(positions) != 1 {
			t.Fatalf("expected 1 position, got %d", len(positions))
		}
		if positions[0].Amount != -250000 {
			t.Errorf("expected -250000 minor units, got %d", positions[0].Amount)
		}
	})
}

func TestQueries(t *testing.T) {
	p := models.Period{Year: 2024, Month: 3}

	expenses := ExpensesQuery(p)
	if !strings.Contains(expenses, "month = 3") || !strings.Contains(expenses, "year = 2024") {
		t.Errorf("expenses query missing period filter: %s", expenses)
	}
	if !strings.Contains(expenses, "Expenses") || !strings.Contains(expenses, "Liabilities") {
		t.Errorf("expenses query missing account filters: %s", expenses)
	}

	income := IncomeQuery(p)
	if !strings.Contains(income, "month = 3") || !strings.Contains(income, "year = 2024") {
		t.Errorf("income query missing period filter: %s", income)
	}
	if !strings.Contains(income, "Exclude") {
		t.Errorf("income query should exclude tagged postings: %s", income)
	}
}
