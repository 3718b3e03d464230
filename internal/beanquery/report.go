// Package beanquery talks to the external ledger query tool. The engine
// never parses the ledger itself: it runs a textual query through the
// bean-query binary, materializes the tabular report into an intermediate
// file, and consumes the report's `account value currency` rows.
package beanquery

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/money"
	"budgeteer/internal/validator"
)

// headerLines is the number of leading report lines (column header and
// separator) discarded before rows begin.
const headerLines = 2

// Position is one imported account balance from the external ledger.
type Position struct {
	Account  string `validate:"required,ledger_account"`
	Amount   money.Amount
	Currency string `validate:"required,commodity"`
}

// ParseReport reads a bean-query balance report and returns its positions.
// The first two lines are header/separator and are discarded; blank lines
// produce no position. A malformed amount aborts the parse: it indicates
// corrupt import data, not a recoverable condition.
func ParseReport(r io.Reader) ([]Position, error) {
	var positions []Position

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line <= headerLines {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("report line %d: expected 'account value currency', got %q", line, text))
		}

		amount, err := money.Decode(fields[1])
		if err != nil {
			return nil, err
		}

		pos := Position{Account: fields[0], Amount: amount, Currency: fields[2]}
		if err := validator.Struct(pos); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		positions = append(positions, pos)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	return positions, nil
}
