package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type GroceryList struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	CreatedUtc   time.Time  `json:"created_utc"`
	PurchasedUtc *time.Time `json:"purchased_utc"`
}

// GroceryListItem belongs to exactly one list. ID 0 marks a record that
// has not been inserted yet.
type GroceryListItem struct {
	ID            int64           `json:"id"`
	ListID        int64           `json:"list_id"`
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	PurchasedDate *time.Time      `json:"purchased_date"`
}

// ListSummary is a read-only projection computed per query; it is never
// persisted.
type ListSummary struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CreatedUtc   time.Time       `json:"created_utc"`
	PurchasedUtc *time.Time      `json:"purchased_utc"`
	ItemCount    int             `json:"item_count"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}
