package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukerupert/pantrypal/internal/database"
	"github.com/dukerupert/pantrypal/internal/logging"
	"github.com/dukerupert/pantrypal/internal/seed"
	"github.com/dukerupert/pantrypal/internal/store"
)

func main() {
	var (
		doSeed    = flag.Bool("seed", false, "create a randomized sample list before printing summaries")
		seedName  = flag.String("seed-name", "", "name for the sample list (default: next \"List N\")")
		seedItems = flag.Int("seed-items", 0, "item count for the sample list, clamped to 3..10 (0 = random)")
	)
	flag.Parse()

	logger := logging.Setup(os.Getenv("PANTRYPAL_LOG_LEVEL"))

	dbPath := os.Getenv("PANTRYPAL_DB_PATH")
	if dbPath == "" {
		dbPath = "pantrypal.db"
	}

	db := database.New(dbPath)
	if err := db.Initialize(); err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	items := store.NewItemStore(db)
	lists := store.NewListStore(db, items)

	if *doSeed {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		seeder := seed.New(lists, items, logger)
		list, err := seeder.CreateSampleList(ctx, *seedName, *seedItems)
		if err != nil {
			logger.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %q (id %d)\n", list.Name, list.ID)
	}

	summaries, err := lists.Summaries()
	if err != nil {
		logger.Error("loading summaries failed", "error", err)
		os.Exit(1)
	}

	if len(summaries) == 0 {
		fmt.Println("No lists yet.")
		return
	}
	for _, s := range summaries {
		purchased := "-"
		if s.PurchasedUtc != nil {
			purchased = s.PurchasedUtc.Format("2006-01-02")
		}
		fmt.Printf("%4d  %-24s  created %s  purchased %-10s  %2d items  $%s\n",
			s.ID, s.Name, s.CreatedUtc.Format("2006-01-02"), purchased,
			s.ItemCount, s.TotalCost.StringFixed(2))
	}
}
