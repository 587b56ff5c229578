package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"topstore/internal/catalog"
	"topstore/internal/config"
	"topstore/internal/ledger"
	"topstore/internal/seed"
)

const maxOrdersCount = 10000

// Генерирует заказы по стартовому каталогу в файл для `storectl orders import`
func main() {
	seedValue := flag.Int64("seed", 0, "Random seed, 0 for time based")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: go run scripts/generate_test_data.go [-seed N] <count>")
		fmt.Println("Example: go run scripts/generate_test_data.go 10")
		os.Exit(1)
	}

	count, err := strconv.Atoi(flag.Arg(0))
	if err != nil || count <= 0 {
		log.Fatalf("Invalid count: must be a positive integer")
	}
	if count > maxOrdersCount {
		log.Fatalf("Count too large: maximum %d orders allowed", maxOrdersCount)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gen := seed.New(*seedValue)
	ids := ledger.NewIDGenerator()
	products := catalog.DefaultProducts()

	filename := fmt.Sprintf("test_data_%d_orders.json", count)
	file, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Failed to create file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	for i := 0; i < count; i++ {
		order := gen.Order(ids.Next(), cfg.Shipping.SupportedCountry, products)
		if err := encoder.Encode(order); err != nil {
			log.Printf("Failed to encode order %s: %v", order.ID, err)
		}
	}

	log.Printf("Generated %d orders in %s", count, filename)
}
