package database

import (
	"errors"
	"fmt"

	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedVariant struct {
	name  string
	price int64
}

type seedProduct struct {
	name     string
	code     string
	price    int64
	stockKg  int64
	variants []seedVariant
}

var defaultCatalog = []seedProduct{
	{name: "Acrylic", code: "PRD-ACRYLIC", price: 1000, stockKg: 1250, variants: []seedVariant{
		{"Satin Acrylic", 1200},
		{"Emulsion Acrylic", 1100},
		{"Gloss Acrylic", 1300},
	}},
	{name: "Calcium", code: "PRD-CALCIUM", price: 800, stockKg: 80, variants: []seedVariant{
		{"Calcium Carbonate", 800},
		{"Calcium Hydroxide", 950},
	}},
	{name: "Genepo", code: "PRD-GENEPO", price: 1500, stockKg: 540},
	{name: "PVA", code: "PRD-PVA", price: 900, stockKg: 300},
}

// SeedDefaultData creates the main branch and the starter catalog.
// Existing rows are left alone so it is safe to run on every start.
func SeedDefaultData(db *gorm.DB, log zerolog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		branch, err := seedBranch(tx)
		if err != nil {
			return err
		}

		for _, sp := range defaultCatalog {
			var existing entity.Product
			err := tx.Unscoped().Where("code = ?", sp.code).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("seed: lookup product %s: %w", sp.code, err)
			}

			product := entity.Product{
				BranchID:   branch.ID,
				Name:       sp.name,
				Slug:       utils.Slugify(sp.name),
				Code:       sp.code,
				PricePerKg: decimal.NewFromInt(sp.price),
				StockKg:    decimal.NewFromInt(sp.stockKg),
			}
			for _, v := range sp.variants {
				product.Variants = append(product.Variants, entity.ProductVariant{
					Name:       v.name,
					PricePerKg: decimal.NewFromInt(v.price),
				})
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("seed: create product %s: %w", sp.name, err)
			}
			log.Info().Str("product", sp.name).Msg("seeded product")
		}
		return nil
	})
}

func seedBranch(tx *gorm.DB) (*entity.Branch, error) {
	var branch entity.Branch
	err := tx.Where("name = ?", entity.DefaultBranchName).First(&branch).Error
	if err == nil {
		return &branch, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("seed: lookup branch: %w", err)
	}

	branch = entity.Branch{Name: entity.DefaultBranchName, Location: "Lagos"}
	if err := tx.Create(&branch).Error; err != nil {
		return nil, fmt.Errorf("seed: create branch: %w", err)
	}
	return &branch, nil
}
