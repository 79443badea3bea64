package model

import "github.com/shopspring/decimal"

// CustomerBasket is a customer's shopping cart, one document per customer.
type CustomerBasket struct {
	CustomerID string       `json:"customer_id"`
	Items      []BasketItem `json:"items"`
}

// NewCustomerBasket returns an empty basket for the given customer. Baskets
// come into existence implicitly on first read.
func NewCustomerBasket(customerID string) CustomerBasket {
	return CustomerBasket{
		CustomerID: customerID,
		Items:      []BasketItem{},
	}
}

// BasketItem is one line of a basket. UnitPrice is a cached copy of the
// catalog price at the time the item was added or last repriced;
// OldUnitPrice holds the previous cached value so clients can render a
// "price changed" notice.
type BasketItem struct {
	ProductID    int64           `json:"product_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	OldUnitPrice decimal.Decimal `json:"old_unit_price"`
	PictureURL   string          `json:"picture_url"`
}
