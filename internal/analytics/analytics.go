// Package analytics aggregates a group's expenses by month and by category.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// MonthlyStat summarizes the expenses recorded in one calendar month.
type MonthlyStat struct {
	Month          int    `json:"month"`
	MonthName      string `json:"monthName"`
	TotalExpenses  string `json:"totalExpenses"`
	ExpenseCount   int    `json:"expenseCount"`
	AverageExpense string `json:"averageExpense"`
}

// CategoryStat summarizes the expenses of one category.
type CategoryStat struct {
	Category      models.Category `json:"category"`
	TotalExpenses string          `json:"totalExpenses"`
	ExpenseCount  int             `json:"expenseCount"`
	Percentage    string          `json:"percentage"` // Share of the overall total, one decimal
}

type bucket struct {
	total decimal.Decimal
	count int
}

func (b *bucket) add(amount decimal.Decimal) {
	b.total = b.total.Add(amount)
	b.count++
}

// MonthRange returns the inclusive bounds of a calendar month in loc, or of
// the whole year when month is 0.
func MonthRange(year, month int, loc *time.Location) (start, end time.Time) {
	if month == 0 {
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Monthly groups expenses by the month of CreatedAt. Months without
// expenses are omitted; the result is sorted by month.
func Monthly(expenses []*models.Expense) []MonthlyStat {
	months := make(map[time.Month]*bucket)
	for _, e := range expenses {
		m := e.CreatedAt.Month()
		if months[m] == nil {
			months[m] = &bucket{}
		}
		months[m].add(e.Amount)
	}

	stats := make([]MonthlyStat, 0, len(months))
	for m, b := range months {
		average := b.total.Div(decimal.NewFromInt(int64(b.count)))
		stats = append(stats, MonthlyStat{
			Month:          int(m),
			MonthName:      m.String(),
			TotalExpenses:  calculator.FormatAmount(b.total),
			ExpenseCount:   b.count,
			AverageExpense: calculator.FormatAmount(average),
		})
	}

	slices.SortFunc(stats, func(a, b MonthlyStat) int { return cmp.Compare(a.Month, b.Month) })
	return stats
}

// ByCategory groups expenses by category and returns the stats, largest
// total first, along with the overall total.
func ByCategory(expenses []*models.Expense) ([]CategoryStat, decimal.Decimal) {
	overall := decimal.Zero
	categories := make(map[models.Category]*bucket)
	for _, e := range expenses {
		c := e.Category
		if c == "" {
			c = models.CategoryOther
		}
		if categories[c] == nil {
			categories[c] = &bucket{}
		}
		categories[c].add(e.Amount)
		overall = overall.Add(e.Amount)
	}

	type row struct {
		category models.Category
		bucket   *bucket
	}
	rows := make([]row, 0, len(categories))
	for c, b := range categories {
		rows = append(rows, row{c, b})
	}
	slices.SortFunc(rows, func(a, b row) int {
		if c := b.bucket.total.Cmp(a.bucket.total); c != 0 {
			return c
		}
		return cmp.Compare(a.category, b.category)
	})

	hundred := decimal.NewFromInt(100)
	stats := make([]CategoryStat, 0, len(rows))
	for _, r := range rows {
		percentage := decimal.Zero
		if overall.IsPositive() {
			percentage = r.bucket.total.Div(overall).Mul(hundred)
		}
		stats = append(stats, CategoryStat{
			Category:      r.category,
			TotalExpenses: calculator.FormatAmount(r.bucket.total),
			ExpenseCount:  r.bucket.count,
			Percentage:    percentage.StringFixed(1),
		})
	}

	return stats, overall
}
