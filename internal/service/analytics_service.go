package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/settleup/internal/analytics"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/storage"
)

// MonthlyReport lists a group's spending per month.
type MonthlyReport struct {
	GroupID       string                  `json:"groupId"`
	GroupName     string                  `json:"groupName"`
	Year          int                     `json:"year"`
	Month         int                     `json:"month,omitempty"` // 0 for the whole year
	TotalExpenses string                  `json:"totalExpenses"`
	Months        []analytics.MonthlyStat `json:"months"`
}

// CategoryReport lists a group's spending per category over a date range.
type CategoryReport struct {
	GroupID       string                   `json:"groupId"`
	GroupName     string                   `json:"groupName"`
	Start         time.Time                `json:"start"`
	End           time.Time                `json:"end"`
	TotalExpenses string                   `json:"totalExpenses"`
	Categories    []analytics.CategoryStat `json:"categories"`
}

// AnalyticsService reports spending patterns of a group.
type AnalyticsService struct {
	store storage.Store
	loc   *time.Location
	now   func() time.Time
}

// NewAnalyticsService creates an AnalyticsService. Month boundaries are
// computed in UTC.
func NewAnalyticsService(store storage.Store) *AnalyticsService {
	return &AnalyticsService{store: store, loc: time.UTC, now: time.Now}
}

// MonthlyAnalytics reports per-month totals for year, or for a single month
// when month is 1-12. A zero year means the current year.
func (s *AnalyticsService) MonthlyAnalytics(ctx context.Context, groupID string, year, month int) (*MonthlyReport, error) {
	slog.Info("MonthlyAnalytics request received", "group_id", groupID, "year", year, "month", month)

	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id required", ErrInvalidArgument)
	}
	if year == 0 {
		year = s.now().In(s.loc).Year()
	}
	if year < 1 {
		return nil, fmt.Errorf("%w: invalid year %d", ErrInvalidArgument, year)
	}
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("%w: invalid month %d", ErrInvalidArgument, month)
	}

	start, end := analytics.MonthRange(year, month, s.loc)
	group, expenses, err := loadGroupExpenses(ctx, s.store, groupID, storage.ExpenseFilter{Start: start, End: end})
	if err != nil {
		slog.Error("MonthlyAnalytics failed", "group_id", groupID, "error", err)
		return nil, err
	}

	months := analytics.Monthly(expenses)

	slog.Info("MonthlyAnalytics successful", "group_id", groupID, "expenses_count", len(expenses), "months_count", len(months))

	return &MonthlyReport{
		GroupID:       group.ID,
		GroupName:     group.Name,
		Year:          year,
		Month:         month,
		TotalExpenses: calculator.FormatAmount(calculator.TotalExpenses(toRecords(expenses))),
		Months:        months,
	}, nil
}

// CategoryAnalytics reports per-category totals between start and end.
// A zero start defaults to the first day of the current month and a zero
// end to now.
func (s *AnalyticsService) CategoryAnalytics(ctx context.Context, groupID string, start, end time.Time) (*CategoryReport, error) {
	slog.Info("CategoryAnalytics request received", "group_id", groupID, "start", start, "end", end)

	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id required", ErrInvalidArgument)
	}

	now := s.now().In(s.loc)
	if start.IsZero() {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	}
	if end.IsZero() {
		end = now
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidArgument, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	group, expenses, err := loadGroupExpenses(ctx, s.store, groupID, storage.ExpenseFilter{Start: start, End: end})
	if err != nil {
		slog.Error("CategoryAnalytics failed", "group_id", groupID, "error", err)
		return nil, err
	}

	categories, total := analytics.ByCategory(expenses)

	slog.Info("CategoryAnalytics successful", "group_id", groupID, "expenses_count", len(expenses), "categories_count", len(categories))

	return &CategoryReport{
		GroupID:       group.ID,
		GroupName:     group.Name,
		Start:         start,
		End:           end,
		TotalExpenses: calculator.FormatAmount(total),
		Categories:    categories,
	}, nil
}
