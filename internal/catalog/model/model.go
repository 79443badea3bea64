package model

import "github.com/shopspring/decimal"

// CatalogItem is a sellable product record. Price is the source of truth for
// the whole system; basket line items only cache it.
type CatalogItem struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	PictureFileName string          `json:"picture_file_name"`
	PictureURL      string          `json:"picture_url,omitempty"`
	CatalogBrandID  int64           `json:"catalog_brand_id"`
	CatalogTypeID   int64           `json:"catalog_type_id"`
	AvailableStock  int             `json:"available_stock"`
	OnReorder       bool            `json:"on_reorder"`
}

type CatalogBrand struct {
	ID    int64  `json:"id"`
	Brand string `json:"brand"`
}

type CatalogType struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// PaginatedItems is one page of catalog items ordered by id ascending.
type PaginatedItems struct {
	PageIndex  int           `json:"page_index"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	Items      []CatalogItem `json:"items"`
}
