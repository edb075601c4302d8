package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement units. Batch quantities are counted in pieces/area ("qty"), the
// product reservation counter in boxes ("box").
const (
	UnitQty = "qty"
	UnitBox = "box"
)

// Movement kinds.
const (
	MovementPurchase         = "purchase"
	MovementPurchaseReversal = "purchase_reversal"
	MovementReserve          = "quotation_reserve"
	MovementRelease          = "quotation_release"
	MovementDispatch         = "dispatch"
	MovementDispatchReversal = "dispatch_reversal"
	MovementOpening          = "opening"
	MovementAdjustment       = "adjustment"
)

// StockMovement is an immutable entry of the stock ledger. Every change to a
// batch quantity or to a product's box counter appends exactly one row;
// corrections are new rows with the opposite sign.
type StockMovement struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	BatchID   *uint           `gorm:"index" json:"batchId"`
	Kind      string          `gorm:"size:30;not null" json:"kind"`
	Unit      string          `gorm:"size:10;not null" json:"unit"`
	Delta     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"delta"`
	RefType   string          `gorm:"size:30;index:idx_movement_ref" json:"refType"`
	RefID     uint            `gorm:"index:idx_movement_ref" json:"refId"`
	CreatedAt time.Time       `json:"createdAt"`
}
