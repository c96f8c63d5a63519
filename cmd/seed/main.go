package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/config"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"
)

// seedProduct is one fixture entry. Stock lands in the ledger as an
// "initial" event so the reconciliation invariant holds from the start.
type seedProduct struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    int64           `json:"price"`
	Stock    int             `json:"stock"`
	IsActive *bool           `json:"is_active,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

func main() {
	fixture := flag.String("fixture", "seed/products.json", "path to the product fixture file")
	flag.Parse()

	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	data, err := os.ReadFile(*fixture)
	if err != nil {
		log.Fatalf("Failed to read fixture %s: %v", *fixture, err)
	}

	var seeds []seedProduct
	if err := json.Unmarshal(data, &seeds); err != nil {
		log.Fatalf("Failed to parse fixture: %v", err)
	}

	created, skipped := 0, 0
	for _, seed := range seeds {
		if seed.ID == "" || seed.Name == "" {
			log.Fatalf("Fixture entry missing id or name: %+v", seed)
		}

		if _, err := db.GetProductByID(ctx, seed.ID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, models.ErrProductNotFound) {
			log.Fatalf("Failed to check product %s: %v", seed.ID, err)
		}

		product := &models.Product{
			ID:       seed.ID,
			Name:     seed.Name,
			Price:    seed.Price,
			StockQty: seed.Stock,
			IsActive: true,
			Metadata: seed.Metadata,
		}
		if seed.IsActive != nil {
			product.IsActive = *seed.IsActive
		}

		if err := db.CreateProduct(ctx, product); err != nil {
			log.Fatalf("Failed to create product %s: %v", seed.ID, err)
		}
		created++
	}

	log.Printf("Seed complete: %d created, %d already present", created, skipped)
}
