package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale records a quantity sold of a product. ProductID is a weak reference:
// it is not guaranteed to resolve to a stored Product.
type Sale struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
