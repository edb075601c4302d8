package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is an incoming supplier bill.
type Purchase struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BillNo        string          `gorm:"size:50;not null;uniqueIndex" json:"billNo"`
	PurchaseDate  *time.Time      `json:"purchaseDate"`
	ClientName    string          `gorm:"size:255" json:"clientName"`
	ClientContact string          `gorm:"size:50" json:"clientContact"`
	SubTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Items []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
}

// PurchaseItem is one bill line. Qty is credited to the (ProductID, BatchNo)
// batch with Godown as the location of a newly created batch.
type PurchaseItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PurchaseID uint            `gorm:"not null;index" json:"purchaseId"`
	ProductID  uint            `gorm:"not null;index" json:"productId"`
	BatchNo    string          `gorm:"size:100;not null" json:"batchNo"`
	Qty        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"qty"`
	Rate       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`
	Cov        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1" json:"cov"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Godown     string          `gorm:"size:100" json:"godown"`
}
