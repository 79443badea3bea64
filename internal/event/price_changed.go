package event

import "github.com/shopspring/decimal"

// TopicCatalogItemPriceChanged carries notifications that a catalog item's
// price changed. Messages are keyed by product id, so price changes for the
// same product stay ordered within a partition.
const TopicCatalogItemPriceChanged = "catalog.item.price_changed"

// CatalogItemPriceChangedEvent is the integration event published by the
// catalog service and consumed by the basket service.
type CatalogItemPriceChangedEvent struct {
	ProductID int64           `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}
