package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest states. Approved and rejected are terminal.
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
)

// PaymentRequest is a client payment awaiting approval. Only an approval moves
// money into the owning quotation's paid/due balance.
type PaymentRequest struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	QuotationID uint            `gorm:"not null;index" json:"quotationId"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentType string          `gorm:"size:50" json:"paymentType"`
	Remark      string          `gorm:"type:text" json:"remark"`
	Status      string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Quotation *Quotation `gorm:"foreignKey:QuotationID" json:"-"`
}
