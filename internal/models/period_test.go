package models

import (
	"testing"
	"time"
)

func TestPeriodNext(t *testing.T) {
	cases := []struct {
		in   Period
		want Period
	}{
		{Period{2024, 1}, Period{2024, 2}},
		{Period{2024, 11}, Period{2024, 12}},
		{Period{2024, 12}, Period{2025, 1}},
	}
	for _, c := range cases {
		if got := c.in.Next(); got != c.want {
			t.Errorf("%v.Next() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPeriodPrev(t *testing.T) {
	cases := []struct {
		in   Period
		want Period
	}{
		{Period{2024, 2}, Period{2024, 1}},
		{Period{2024, 1}, Period{2023, 12}},
	}
	for _, c := range cases {
		if got := c.in.Prev(); got != c.want {
			t.Errorf("%v.Prev() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPeriodString(t *testing.T) {
	if got := (Period{Year: 2024, Month: 3}).String(); got != "2024-03" {
		t.Errorf("expected 2024-03, got %s", got)
	}
}

func TestCurrentPeriod(t *testing.T) {
	now := time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)
	if got := CurrentPeriod(now); got != (Period{Year: 2024, Month: 7}) {
		t.Errorf("expected 2024-07, got %v", got)
	}
}

func TestCorrectionTypeValid(t *testing.T) {
	for _, valid := range []CorrectionType{CorrectionCarry, CorrectionAdjustment, CorrectionSingle} {
		if !valid.Valid() {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	if CorrectionType("X").Valid() {
		t.Error("expected X to be invalid")
	}
	if CorrectionType("").Valid() {
		t.Error("expected empty type to be invalid")
	}
}
