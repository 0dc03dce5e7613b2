package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ikkim/mventory-backend/config"
	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/internal/app/repository"
	"github.com/ikkim/mventory-backend/internal/app/service"
	"github.com/ikkim/mventory-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Expected sheet layout, header row first:
// name | sku | category | quantity | price | description
const minColumns = 6

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <owner_email> <xlsx_file_path>")
	}

	ownerEmail := service.NormalizeEmail(os.Args[1])
	filePath := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(conn)

	userRepo := repository.NewUserRepository(conn)
	productRepo := repository.NewProductRepository(conn)

	owner, err := userRepo.FindByEmail(ownerEmail)
	if err != nil {
		log.Fatalf("Failed to find owner %s: %v", ownerEmail, err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath, owner.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import for %s: %d (skipped rows: %d)\n", owner.Email, len(products), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := productRepo.CreateBatch(products); err != nil {
		log.Fatal("Failed to import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string, ownerID uint) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	fmt.Printf("Headers: %v\n", rows[0])
	products, skipped := parseProductRows(rows[1:], ownerID)
	return products, skipped, nil
}

// parseProductRows converts data rows into products, skipping rows that are
// short or missing a required value.
func parseProductRows(rows [][]string, ownerID uint) ([]model.Product, int) {
	var products []model.Product
	skipped := 0

	for _, row := range rows {
		if len(row) < minColumns {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		sku := strings.TrimSpace(row[1])
		category := strings.TrimSpace(row[2])
		description := strings.TrimSpace(row[5])

		quantity, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || quantity < 0 {
			skipped++
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[4]), ",", ""), 64)
		if err != nil || price < 0 {
			skipped++
			continue
		}

		if name == "" || category == "" || description == "" {
			skipped++
			continue
		}

		products = append(products, model.Product{
			UserID:      ownerID,
			Name:        name,
			SKU:         sku,
			Category:    category,
			Quantity:    quantity,
			Price:       price,
			Description: description,
		})
	}

	return products, skipped
}
