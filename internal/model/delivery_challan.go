package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryChallan is a dispatch note against a quotation. Client, contact and
// address are snapshots taken when the challan is generated.
type DeliveryChallan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	QuotationID   uint      `gorm:"not null;index" json:"quotationId"`
	Client        string    `gorm:"size:255" json:"client"`
	Contact       string    `gorm:"size:50" json:"contact"`
	Address       string    `gorm:"type:text" json:"address"`
	DeliveryBoy   string    `gorm:"size:255" json:"deliveryBoy"`
	DriverContact string    `gorm:"size:50" json:"driverContact"`
	Tempo         string    `gorm:"size:50" json:"tempo"`
	CreatedAt     time.Time `json:"createdAt"`

	Items []DeliveryChallanItem `gorm:"foreignKey:ChallanID;constraint:OnDelete:CASCADE" json:"items"`
}

// DeliveryChallanItem records one product dispatched on a challan.
// RemainingStock is stored as supplied by the client.
type DeliveryChallanItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ChallanID      uint            `gorm:"not null;index" json:"challanId"`
	ProductID      uint            `gorm:"not null;index" json:"productId"`
	ProductName    string          `gorm:"size:255" json:"productName"`
	DispatchBoxes  int             `gorm:"not null" json:"dispatchBoxes"`
	DispatchQty    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"dispatchQty"`
	RemainingStock decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"remainingStock"`

	Deductions []DeliveryChallanDeduction `gorm:"foreignKey:ChallanItemID;constraint:OnDelete:CASCADE" json:"deductions,omitempty"`
}

// DeliveryChallanDeduction is the per-batch breakdown of a dispatch. Deleting
// a challan credits these rows back to the same batches.
type DeliveryChallanDeduction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ChallanItemID uint            `gorm:"not null;index" json:"challanItemId"`
	BatchID       uint            `gorm:"not null" json:"batchId"`
	BatchNo       string          `gorm:"size:100" json:"batchNo"`
	Qty           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"qty"`
}
