package core

import (
	"testing"
	"time"
)

func TestMonthRangeCoversWholeMonth(t *testing.T) {
	cases := []struct {
		year, month int
		lastDay     int
	}{
		{2025, 1, 31},
		{2025, 4, 30},
		{2025, 2, 28},
		{2024, 2, 29}, // leap year
		{2000, 2, 29}, // century leap year
		{1900, 2, 28}, // century non-leap year
		{2025, 12, 31},
	}
	for _, tc := range cases {
		start, end := MonthRange(tc.year, tc.month)

		if start.Year() != tc.year || int(start.Month()) != tc.month || start.Day() != 1 {
			t.Fatalf("%d-%d: wrong start %v", tc.year, tc.month, start)
		}
		if h, m, s := start.Clock(); h != 0 || m != 0 || s != 0 {
			t.Fatalf("%d-%d: start not at midnight: %v", tc.year, tc.month, start)
		}

		if end.Day() != tc.lastDay {
			t.Fatalf("%d-%d: expected last day %d, got %d", tc.year, tc.month, tc.lastDay, end.Day())
		}
		if h, m, s := end.Clock(); h != 23 || m != 59 || s != 59 {
			t.Fatalf("%d-%d: end not at 23:59:59: %v", tc.year, tc.month, end)
		}
		if end.Nanosecond() != 999_000_000 {
			t.Fatalf("%d-%d: end not at .999: %v", tc.year, tc.month, end)
		}
	}
}

func TestMonthRangeBoundary(t *testing.T) {
	_, end := MonthRange(2025, 6)

	lastInstant := time.Date(2025, 6, 30, 23, 59, 59, 999_000_000, time.UTC)
	if !end.Equal(lastInstant) {
		t.Fatalf("expected end %v, got %v", lastInstant, end)
	}

	nextMonth := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if !end.Before(nextMonth) {
		t.Fatalf("end %v should precede next month start %v", end, nextMonth)
	}
}

func TestMonthRangeRollsOver(t *testing.T) {
	// Out-of-range months are normalized into adjacent years, not rejected.
	start, _ := MonthRange(2025, 13)
	if start.Year() != 2026 || start.Month() != time.January {
		t.Fatalf("month 13 of 2025 should start 2026-01, got %v", start)
	}

	start, _ = MonthRange(2025, 0)
	if start.Year() != 2024 || start.Month() != time.December {
		t.Fatalf("month 0 of 2025 should start 2024-12, got %v", start)
	}
}

func TestGroupCostsAlwaysFiveBuckets(t *testing.T) {
	groups := GroupCosts(nil)
	if len(groups) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(groups))
	}
	for i, cat := range Categories() {
		if groups[i].Category != cat {
			t.Fatalf("bucket %d: expected %q, got %q", i, cat, groups[i].Category)
		}
		if groups[i].Items == nil {
			t.Fatalf("bucket %q: items must be an empty slice, not nil", cat)
		}
		if len(groups[i].Items) != 0 {
			t.Fatalf("bucket %q: expected empty", cat)
		}
	}
}

func TestGroupCostsGroupsAndExtractsDay(t *testing.T) {
	costs := []Cost{
		{Description: "bread", Category: Food, Sum: 10, Date: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
		{Description: "milk", Category: Food, Sum: 15, Date: time.Date(2025, 6, 2, 19, 30, 0, 0, time.UTC)},
		{Description: "gym", Category: Sport, Sum: 40, Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	groups := GroupCosts(costs)

	food := groups[0].Items
	if len(food) != 2 {
		t.Fatalf("expected 2 food items, got %d", len(food))
	}
	if food[0].Day != 1 || food[1].Day != 2 {
		t.Fatalf("expected days 1 and 2, got %d and %d", food[0].Day, food[1].Day)
	}
	if food[0].Sum != 10 || food[0].Description != "bread" {
		t.Fatalf("unexpected first food item: %+v", food[0])
	}

	sport := groups[3].Items
	if len(sport) != 1 || sport[0].Day != 15 {
		t.Fatalf("unexpected sport bucket: %+v", sport)
	}

	for _, i := range []int{1, 2, 4} { // health, housing, education
		if len(groups[i].Items) != 0 {
			t.Fatalf("bucket %q should be empty", groups[i].Category)
		}
	}
}

func TestGroupCostsDropsUnknownCategory(t *testing.T) {
	costs := []Cost{
		{Description: "ok", Category: Health, Sum: 5, Date: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)},
		{Description: "drifted", Category: "entertainment", Sum: 99, Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
	}

	groups := GroupCosts(costs)

	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	if total != 1 {
		t.Fatalf("expected corrupt-category item to be dropped, got %d items", total)
	}
	if groups[1].Items[0].Description != "ok" {
		t.Fatalf("wrong surviving item: %+v", groups[1].Items[0])
	}
}

func TestTotalSpend(t *testing.T) {
	if got := TotalSpend(nil); got != 0 {
		t.Fatalf("expected 0 for no costs, got %v", got)
	}

	costs := []Cost{{Sum: 10}, {Sum: 15}}
	if got := TotalSpend(costs); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}

	mixed := []Cost{{Sum: 100.5}, {Sum: -30.5}, {Sum: 0}}
	if got := TotalSpend(mixed); got != 70 {
		t.Fatalf("expected 70, got %v", got)
	}
}
