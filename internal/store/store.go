// Package store implements the repository layer over the shared
// database handle. Each repository is an interface with one concrete
// implementation so callers can inject fakes without a service locator.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/pantrypal/internal/model"
)

// ErrNotFound reports a mutating operation that matched no row.
// Lookups return nil instead of this error.
var ErrNotFound = errors.New("not found")

// ValidationError reports caller-supplied data that violates a
// precondition; nothing was written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ItemRepository is the data-access contract for grocery list items.
type ItemRepository interface {
	ListByList(listID int64) ([]model.GroceryListItem, error)
	GetByID(id int64) (*model.GroceryListItem, error)
	Upsert(item *model.GroceryListItem) error
	Delete(id int64) error
	TotalCost(listID int64) (decimal.Decimal, error)
	SetPurchasedForList(listID int64, purchased *time.Time) error
}

// ListRepository is the data-access contract for grocery lists.
type ListRepository interface {
	All() ([]model.GroceryList, error)
	GetByID(id int64) (*model.GroceryList, error)
	Create(name string, createdUtc, purchasedUtc *time.Time) (*model.GroceryList, error)
	Rename(id int64, newName string) error
	Update(id int64, name string, purchasedUtc *time.Time) error
	Delete(id int64) error
	Summaries() ([]model.ListSummary, error)
}

// Timestamps are stored as fixed-width ISO-8601 UTC text so the date
// columns sort correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullTimeArg converts an optional timestamp into a bind value.
func nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
