// README: Product and variant master data.
package catalog

import (
	"breeze/internal/types"
)

type Variant struct {
	ID    types.ID    `json:"id"`
	Color string      `json:"color"`
	Size  string      `json:"size"`
	Price types.Money `json:"price"`
	Stock int         `json:"stock"`
}

type Product struct {
	ID            types.ID    `json:"_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Brand         string      `json:"brand"`
	FeaturedImage string      `json:"featuredImage"`
	Price         types.Money `json:"price"`
	Featured      bool        `json:"featured"`
	Variants      []Variant   `json:"variants"`
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	Category string
	Search   string
	Featured bool
}
