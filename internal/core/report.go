// Package core provides the domain model and the cost aggregation logic.
//
// This file implements the monthly report aggregator: computing calendar
// month bounds, grouping costs into the fixed category buckets, and summing
// total spend per user.
package core

import "time"

// ReportItem is one line inside a category bucket of a monthly report.
// Day is the 1-based day of the month the cost was dated.
type ReportItem struct {
	Sum         float64 `json:"sum"`
	Description string  `json:"description"`
	Day         int     `json:"day"`
}

// CategoryGroup is the per-category bucket of a monthly report.
type CategoryGroup struct {
	Category Category
	Items    []ReportItem
}

// Report is the category-grouped view of one user's costs for a calendar
// month. UserID is echoed exactly as the caller supplied it. Groups always
// holds the five categories in fixed order, empty buckets included.
type Report struct {
	UserID string
	Year   int
	Month  int
	Groups []CategoryGroup
}

// MonthRange returns the inclusive [start, end] bounds of the given calendar
// month in UTC. The end bound is the last millisecond of the month, derived
// from the first instant of the following month, so month lengths and leap
// years fall out of time.Date normalization. Month values outside 1-12 roll
// over into adjacent years the same way.
func MonthRange(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond)
	return start, end
}

// GroupCosts distributes costs into the five fixed category buckets,
// preserving input order within each bucket. A cost whose stored category is
// not one of the five is dropped rather than failing the report.
func GroupCosts(costs []Cost) []CategoryGroup {
	cats := Categories()
	groups := make([]CategoryGroup, len(cats))
	index := make(map[Category]int, len(cats))
	for i, cat := range cats {
		groups[i] = CategoryGroup{Category: cat, Items: []ReportItem{}}
		index[cat] = i
	}
	for _, c := range costs {
		i, ok := index[c.Category]
		if !ok {
			continue
		}
		groups[i].Items = append(groups[i].Items, ReportItem{
			Sum:         c.Sum,
			Description: c.Description,
			Day:         c.Date.UTC().Day(),
		})
	}
	return groups
}

// TotalSpend sums the amount of every cost in sequence. Zero costs sum to
// exactly 0.
func TotalSpend(costs []Cost) float64 {
	var total float64
	for _, c := range costs {
		total += c.Sum
	}
	return total
}
