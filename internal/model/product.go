package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry (one tile design in one size/quality).
// AvailQty is the box-level reservation counter: quotations debit it at save
// time and dispatches debit it again on delivery. Batch quantities live in
// ProductBatch and are the authoritative stock figure.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Size        string          `gorm:"size:100" json:"size"`
	Brand       string          `gorm:"size:100" json:"brand"`
	Category    string          `gorm:"size:100" json:"category"`
	Quality     string          `gorm:"size:100" json:"quality"`
	Rate        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`
	Status      string          `gorm:"size:50;not null;default:'active'" json:"status"`
	Description string          `gorm:"type:text" json:"description"`
	Image       string          `gorm:"size:255" json:"image"`
	AvailQty    int             `gorm:"not null;default:0" json:"availQty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Batches []ProductBatch `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"batches,omitempty"`
}

// ProductBatch is a receipt-tagged sub-quantity of a product.
// Qty is the materialized sum of the "qty" stock movements for the batch.
type ProductBatch struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_product_batch" json:"productId"`
	BatchNo   string          `gorm:"size:100;not null;uniqueIndex:idx_product_batch" json:"batchNo"`
	Qty       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"qty"`
	Location  string          `gorm:"size:100" json:"location"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
