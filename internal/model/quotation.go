package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quotation is a client price quote. DueAmount always equals
// GrandTotal - PaidAmount; PaidAmount only moves through payment approval.
type Quotation struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	ClientName         string          `gorm:"size:255;not null" json:"clientName"`
	ContactNo          string          `gorm:"size:50" json:"contactNo"`
	AltContactNo       string          `gorm:"size:50" json:"altContactNo"`
	GSTNo              string          `gorm:"column:gst_no;size:50" json:"gstNo"`
	Email              string          `gorm:"size:255" json:"email"`
	Address            string          `gorm:"type:text" json:"address"`
	AttendedBy         string          `gorm:"size:255" json:"attendedBy"`
	Architect          string          `gorm:"size:255;index" json:"architect"`
	AdditionalDiscount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"additionalDiscount"`
	HeaderSection      string          `gorm:"type:text" json:"headerSection"`
	BottomSection      string          `gorm:"type:text" json:"bottomSection"`
	GrandTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"grandTotal"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paidAmount"`
	DueAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"dueAmount"`
	IsSettled          bool            `gorm:"not null;default:false" json:"isSettled"`
	CommissionAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"commissionAmount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`

	Items []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
}

// QuotationItem is one quoted line. Box is the quantity reserved against the
// product's box counter at save time. Weight accumulates the quantity already
// dispatched against this line and is written only by delivery dispatch.
type QuotationItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	QuotationID uint            `gorm:"not null;index" json:"quotationId"`
	ProductID   uint            `gorm:"not null;index" json:"productId"`
	Size        string          `gorm:"size:50" json:"size"`
	Quality     string          `gorm:"size:50" json:"quality"`
	Rate        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`
	Cov         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cov"`
	Box         int             `gorm:"not null;default:0" json:"box"`
	Weight      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"weight"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Area        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"area"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

// ArchitectLedger is the append-only commission history of an architect.
type ArchitectLedger struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ArchitectID      string          `gorm:"size:255;not null;index" json:"architectId"`
	QuotationID      uint            `gorm:"not null;index" json:"quotationId"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commissionAmount"`
	SettledAt        time.Time       `gorm:"autoCreateTime" json:"settledAt"`

	Quotation *Quotation `gorm:"foreignKey:QuotationID" json:"-"`
}

// TableName keeps the historical singular table name.
func (ArchitectLedger) TableName() string { return "architect_ledger" }

// ArchitectSettlement records the project amount a commission was paid on.
type ArchitectSettlement struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	ArchitectID        string          `gorm:"size:255;not null;index" json:"architectId"`
	QuotationID        uint            `gorm:"not null;index" json:"quotationId"`
	TotalProjectAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalProjectAmount"`
	SettledAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"settledAmount"`
	SettlementDate     time.Time       `gorm:"autoCreateTime" json:"settlementDate"`
}
