package recipe

import (
	"fmt"
	"strings"
)

// Product is the closed set of frozen dessert types the engine understands.
type Product string

const (
	ProductGelato      Product = "gelato"
	ProductIceCream    Product = "ice_cream"
	ProductSorbet      Product = "sorbet"
	ProductKulfi       Product = "kulfi"
	ProductFruitGelato Product = "fruit_gelato"
)

// Products lists every product in a fixed order.
var Products = []Product{ProductGelato, ProductIceCream, ProductSorbet, ProductKulfi, ProductFruitGelato}

// ParseProduct maps a user supplied name onto a Product. Matching ignores
// case and accepts '-' or ' ' in place of '_'.
func ParseProduct(value string) (Product, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch Product(normalized) {
	case ProductGelato, ProductIceCream, ProductSorbet, ProductKulfi, ProductFruitGelato:
		return Product(normalized), nil
	case "icecream":
		return ProductIceCream, nil
	case "fruitgelato":
		return ProductFruitGelato, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProduct, value)
}

// Valid reports whether p is one of the known products.
func (p Product) Valid() bool {
	for _, known := range Products {
		if p == known {
			return true
		}
	}
	return false
}

// Label returns a display name for the product.
func (p Product) Label() string {
	switch p {
	case ProductGelato:
		return "Gelato"
	case ProductIceCream:
		return "Ice cream"
	case ProductSorbet:
		return "Sorbet"
	case ProductKulfi:
		return "Kulfi"
	case ProductFruitGelato:
		return "Fruit gelato"
	default:
		return string(p)
	}
}
