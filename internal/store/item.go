package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/pantrypal/internal/database"
	"github.com/dukerupert/pantrypal/internal/model"
)

// ItemStore is the SQLite-backed ItemRepository.
type ItemStore struct {
	db *database.DB
}

var _ ItemRepository = (*ItemStore)(nil)

func NewItemStore(db *database.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryListItem, error) {
	var item model.GroceryListItem
	var purchased sql.NullString

	if err := scanner.Scan(&item.ID, &item.ListID, &item.Name, &item.Cost, &purchased); err != nil {
		return nil, err
	}

	p, err := parseNullTime(purchased)
	if err != nil {
		return nil, err
	}
	item.PurchasedDate = p
	return &item, nil
}

const itemCols = `Id, ListId, Name, Cost, PurchasedDate`

// ListByList returns the list's items ordered by purchase date
// descending, unpurchased items last, newest id first within equal
// dates. A list with no items yields an empty slice, not an error.
func (s *ItemStore) ListByList(listID int64) ([]model.GroceryListItem, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(
		`SELECT `+itemCols+` FROM GroceryListItems WHERE ListId = ? ORDER BY PurchasedDate DESC, Id DESC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryListItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetByID returns the item, or nil if no such row exists.
func (s *ItemStore) GetByID(id int64) (*model.GroceryListItem, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	row := conn.QueryRow(`SELECT `+itemCols+` FROM GroceryListItems WHERE Id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Upsert inserts the item when its ID is 0 (assigning a new id on the
// struct) and replaces the full record otherwise. The name is trimmed
// and the purchase date normalized to stored precision in place.
func (s *ItemStore) Upsert(item *model.GroceryListItem) error {
	conn, err := s.db.Conn()
	if err != nil {
		return err
	}

	if item.ListID <= 0 {
		return validationErrf("item requires a list id")
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return validationErrf("item name is required")
	}
	if item.Cost.IsNegative() {
		return validationErrf("item cost must be >= 0")
	}
	if item.PurchasedDate != nil {
		p := item.PurchasedDate.UTC().Truncate(time.Millisecond)
		item.PurchasedDate = &p
	}

	if item.ID == 0 {
		result, err := conn.Exec(
			`INSERT INTO GroceryListItems (ListId, Name, Cost, PurchasedDate) VALUES (?, ?, ?, ?)`,
			item.ListID, item.Name, item.Cost, nullTimeArg(item.PurchasedDate),
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		item.ID = id
		return nil
	}

	_, err = conn.Exec(
		`UPDATE GroceryListItems SET ListId = ?, Name = ?, Cost = ?, PurchasedDate = ? WHERE Id = ?`,
		item.ListID, item.Name, item.Cost, nullTimeArg(item.PurchasedDate), item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete removes the item, failing with ErrNotFound if the id matched
// no row.
func (s *ItemStore) Delete(id int64) error {
	conn, err := s.db.Conn()
	if err != nil {
		return err
	}

	result, err := conn.Exec(`DELETE FROM GroceryListItems WHERE Id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	return nil
}

// TotalCost sums the costs of the list's items, zero for none. SQLite
// aggregates NUMERIC as a float; the coercion back to decimal happens
// here and nowhere else.
func (s *ItemStore) TotalCost(listID int64) (decimal.Decimal, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	err = conn.QueryRow(
		`SELECT IFNULL(SUM(Cost), 0) FROM GroceryListItems WHERE ListId = ?`,
		listID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total cost: %w", err)
	}
	return total, nil
}

// SetPurchasedForList stamps every item of the list with the given
// purchase date (nil clears it). A list with no items is a no-op.
func (s *ItemStore) SetPurchasedForList(listID int64, purchased *time.Time) error {
	conn, err := s.db.Conn()
	if err != nil {
		return err
	}

	_, err = conn.Exec(
		`UPDATE GroceryListItems SET PurchasedDate = ? WHERE ListId = ?`,
		nullTimeArg(purchased), listID,
	)
	if err != nil {
		return fmt.Errorf("set purchased for list: %w", err)
	}
	return nil
}
