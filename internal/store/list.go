package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/pantrypal/internal/database"
	"github.com/dukerupert/pantrypal/internal/model"
)

// ListStore is the SQLite-backed ListRepository. It leans on the items
// repository for one cross-cutting rule: marking a list purchased (or
// not) marks all of its items the same way.
type ListStore struct {
	db    *database.DB
	items ItemRepository
}

var _ ListRepository = (*ListStore)(nil)

func NewListStore(db *database.DB, items ItemRepository) *ListStore {
	return &ListStore{db: db, items: items}
}

func scanList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	var created string
	var purchased sql.NullString

	if err := scanner.Scan(&l.ID, &l.Name, &created, &purchased); err != nil {
		return nil, err
	}

	var err error
	if l.CreatedUtc, err = parseTime(created); err != nil {
		return nil, err
	}
	if l.PurchasedUtc, err = parseNullTime(purchased); err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `Id, Name, CreatedUtc, PurchasedUtc`

// All returns every list, newest first.
func (s *ListStore) All() ([]model.GroceryList, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(`SELECT ` + listCols + ` FROM GroceryLists ORDER BY CreatedUtc DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.GroceryList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// GetByID returns the list, or nil if no such row exists.
func (s *ListStore) GetByID(id int64) (*model.GroceryList, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	row := conn.QueryRow(`SELECT `+listCols+` FROM GroceryLists WHERE Id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// Create inserts a new list and returns it with the id populated.
// CreatedUtc defaults to the current UTC instant when nil.
func (s *ListStore) Create(name string, createdUtc, purchasedUtc *time.Time) (*model.GroceryList, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrf("list name is required")
	}

	created := time.Now().UTC()
	if createdUtc != nil {
		created = createdUtc.UTC()
	}
	created = created.Truncate(time.Millisecond)

	l := &model.GroceryList{Name: name, CreatedUtc: created}
	if purchasedUtc != nil {
		p := purchasedUtc.UTC().Truncate(time.Millisecond)
		l.PurchasedUtc = &p
	}

	result, err := conn.Exec(
		`INSERT INTO GroceryLists (Name, CreatedUtc, PurchasedUtc) VALUES (?, ?, ?)`,
		l.Name, formatTime(l.CreatedUtc), nullTimeArg(l.PurchasedUtc),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	if l.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return l, nil
}

// Rename changes the list's name and nothing else. Load-modify-save,
// so CreatedUtc and PurchasedUtc round-trip untouched.
func (s *ListStore) Rename(id int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return validationErrf("list name is required")
	}

	l, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("rename list %d: %w", id, ErrNotFound)
	}

	l.Name = newName
	return s.save(l)
}

// Update sets the list's name and purchase date, then propagates the
// same purchase date to every item of the list.
func (s *ListStore) Update(id int64, name string, purchasedUtc *time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationErrf("list name is required")
	}

	l, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("update list %d: %w", id, ErrNotFound)
	}

	l.Name = name
	l.PurchasedUtc = nil
	if purchasedUtc != nil {
		p := purchasedUtc.UTC().Truncate(time.Millisecond)
		l.PurchasedUtc = &p
	}
	if err := s.save(l); err != nil {
		return err
	}

	return s.items.SetPurchasedForList(id, l.PurchasedUtc)
}

func (s *ListStore) save(l *model.GroceryList) error {
	conn, err := s.db.Conn()
	if err != nil {
		return err
	}

	_, err = conn.Exec(
		`UPDATE GroceryLists SET Name = ?, CreatedUtc = ?, PurchasedUtc = ? WHERE Id = ?`,
		l.Name, formatTime(l.CreatedUtc), nullTimeArg(l.PurchasedUtc), l.ID,
	)
	if err != nil {
		return fmt.Errorf("save list: %w", err)
	}
	return nil
}

// Delete removes the list; the foreign-key cascade removes its items in
// the same statement. Fails with ErrNotFound if the id matched no row.
func (s *ListStore) Delete(id int64) error {
	conn, err := s.db.Conn()
	if err != nil {
		return err
	}

	result, err := conn.Exec(`DELETE FROM GroceryLists WHERE Id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("delete list %d: %w", id, ErrNotFound)
	}
	return nil
}

// Summaries computes every list's item count and cost total in one
// aggregate query. The left join keeps empty lists in the result with
// a zero count and a zero total.
func (s *ListStore) Summaries() ([]model.ListSummary, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(
		`SELECT l.Id, l.Name, l.CreatedUtc, l.PurchasedUtc,
		        COUNT(i.Id), IFNULL(SUM(i.Cost), 0)
		 FROM GroceryLists l
		 LEFT JOIN GroceryListItems i ON i.ListId = l.Id
		 GROUP BY l.Id
		 ORDER BY l.CreatedUtc DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []model.ListSummary
	for rows.Next() {
		var sum model.ListSummary
		var created string
		var purchased sql.NullString

		err := rows.Scan(&sum.ID, &sum.Name, &created, &purchased, &sum.ItemCount, &sum.TotalCost)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if sum.CreatedUtc, err = parseTime(created); err != nil {
			return nil, err
		}
		if sum.PurchasedUtc, err = parseNullTime(purchased); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
