// Package seed builds randomized sample lists through the repository
// contracts, the same way any other client would.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

var sampleNames = []string{
	"Milk", "Bread", "Eggs", "Butter", "Cheddar Cheese", "Chicken Breast",
	"Apples", "Bananas", "Tomatoes", "Lettuce", "Rice", "Pasta",
	"Olive Oil", "Yogurt", "Orange Juice", "Coffee", "Tea", "Sugar", "Flour", "Cereal",
}

const (
	minItems = 3
	maxItems = 10
	// Sample costs span $1.50 to $25.00.
	minCostCents = 150
	maxCostCents = 2500
	// List dates fall within the last ~3 months.
	maxDaysBack = 90
)

type Seeder struct {
	lists store.ListRepository
	items store.ItemRepository
	log   *slog.Logger
	rng   *rand.Rand
}

func New(lists store.ListRepository, items store.ItemRepository, logger *slog.Logger) *Seeder {
	return &Seeder{
		lists: lists,
		items: items,
		log:   logger,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateSampleList creates a list dated a random recent day with a
// handful of sample items purchased on that date. An empty name picks
// the next free "List N"; itemCount 0 picks a random count, anything
// else is clamped to the 3..10 range. The context is checked between
// item insertions, not mid-insert.
func (s *Seeder) CreateSampleList(ctx context.Context, name string, itemCount int) (*model.GroceryList, error) {
	listName := strings.TrimSpace(name)
	if listName == "" {
		listName = fmt.Sprintf("List %d", s.nextListIndex())
	}

	count := itemCount
	switch {
	case count == 0:
		count = minItems + s.rng.Intn(maxItems-minItems+1)
	case count < minItems:
		count = minItems
	case count > maxItems:
		count = maxItems
	}

	listDate := s.randomRecentUTC()

	s.log.Info("seeding sample list", "name", listName, "date", listDate, "items", count)

	list, err := s.lists.Create(listName, &listDate, nil)
	if err != nil {
		return nil, fmt.Errorf("create sample list: %w", err)
	}

	used := map[string]bool{}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := model.GroceryListItem{
			ListID:        list.ID,
			Name:          s.nextUniqueName(used),
			Cost:          s.randomCost(),
			PurchasedDate: &listDate,
		}
		if err := s.items.Upsert(&item); err != nil {
			s.log.Error("seeding item failed", "name", item.Name, "error", err)
			return nil, fmt.Errorf("seed item %q: %w", item.Name, err)
		}
		s.log.Debug("seeded item", "id", item.ID, "name", item.Name, "cost", item.Cost)
	}

	s.log.Info("seeded sample list", "id", list.ID, "name", list.Name)
	return list, nil
}

// nextListIndex scans existing "List N" names for the highest N. Any
// failure just restarts the numbering at 1.
func (s *Seeder) nextListIndex() int {
	all, err := s.lists.All()
	if err != nil {
		s.log.Warn("scanning list names failed, numbering from 1", "error", err)
		return 1
	}

	max := 0
	for _, l := range all {
		rest, ok := cutPrefixFold(l.Name, "List ")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func (s *Seeder) nextUniqueName(used map[string]bool) string {
	for try := 0; try < 10; try++ {
		name := sampleNames[s.rng.Intn(len(sampleNames))]
		if !used[name] {
			used[name] = true
			return name
		}
	}
	return fmt.Sprintf("Item %d", 100+s.rng.Intn(900))
}

func (s *Seeder) randomCost() decimal.Decimal {
	cents := minCostCents + s.rng.Intn(maxCostCents-minCostCents+1)
	return decimal.New(int64(cents), -2)
}

// randomRecentUTC picks a day up to maxDaysBack in the past, at
// midnight UTC.
func (s *Seeder) randomRecentUTC() time.Time {
	back := s.rng.Intn(maxDaysBack + 1)
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -back)
}
