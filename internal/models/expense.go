package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an expense for analytics.
type Category string

const (
	CategoryFood           Category = "FOOD"
	CategoryTransportation Category = "TRANSPORTATION"
	CategoryAccommodation  Category = "ACCOMMODATION"
	CategoryEntertainment  Category = "ENTERTAINMENT"
	CategoryUtilities      Category = "UTILITIES"
	CategoryShopping       Category = "SHOPPING"
	CategoryHealthcare     Category = "HEALTHCARE"
	CategoryEducation      Category = "EDUCATION"
	CategoryOther          Category = "OTHER"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryAccommodation,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOther,
}

// ParseCategory maps s to a known category, case-insensitively.
// Empty or unknown values map to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Expense represents one shared cost within a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"groupId,omitempty"`

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// PayerID is the user ID of the member who paid.
	// It may reference someone who has since left the group.
	PayerID string `json:"payerId"`

	// Description is a free-form label (e.g., "Groceries").
	Description string `json:"description,omitempty"`

	// Category is used by analytics only.
	Category Category `json:"category,omitempty"`

	// CreatedAt is when the expense was recorded.
	CreatedAt time.Time `json:"createdAt"`
}

// ErrInvalidExpense is returned by Validate for malformed expenses.
var ErrInvalidExpense = errors.New("invalid expense")

// Validate checks that the expense has a payer and a positive amount of at
// least one cent.
func (e *Expense) Validate() error {
	if strings.TrimSpace(e.PayerID) == "" {
		return fmt.Errorf("%w: payer is required", ErrInvalidExpense)
	}
	if !e.Amount.Round(2).IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidExpense, e.Amount)
	}
	return nil
}
