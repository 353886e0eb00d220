package event

import "github.com/shopspring/decimal"

const (
	TopicProductCreated = "product.created"
	TopicSaleRecorded   = "sale.recorded"
)

type ProductCreatedEvent struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

type SaleRecordedEvent struct {
	SaleID    string `json:"sale_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
