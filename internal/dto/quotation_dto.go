package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ClientDetails struct {
	Name         string `json:"name"         validate:"required,max=255"`
	ContactNo    string `json:"contactNo"    validate:"max=50"`
	AltContactNo string `json:"altContactNo" validate:"max=50"`
	Email        string `json:"email"        validate:"omitempty,email"`
	Address      string `json:"address"`
	AttendedBy   string `json:"attendedBy"   validate:"max=255"`
	Architect    string `json:"architect"    validate:"max=255"`
	GSTNo        string `json:"gstNo"        validate:"max=50"`
}

type QuotationRow struct {
	ProductID uint            `json:"productId" validate:"required"`
	Size      string          `json:"size"`
	Quality   string          `json:"quality"`
	Rate      decimal.Decimal `json:"rate"      validate:"min=0"`
	Cov       decimal.Decimal `json:"cov"       validate:"min=0"`
	Box       int             `json:"box"       validate:"min=0"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	Area      decimal.Decimal `json:"area"      validate:"min=0"`
}

type SaveQuotationRequest struct {
	ClientDetails      ClientDetails   `json:"clientDetails"`
	AdditionalDiscount decimal.Decimal `json:"additionalDiscount"`
	HeaderSection      string          `json:"headerSection"`
	BottomSection      string          `json:"bottomSection"`
	Rows               []QuotationRow  `json:"rows"       validate:"required,min=1,dive"`
	GrandTotal         decimal.Decimal `json:"grandTotal" validate:"min=0"`
}

type SettleCommissionRequest struct {
	QuotationID      uint            `json:"quotationId"      validate:"required"`
	ArchitectID      string          `json:"architectId"      validate:"required,max=255"`
	CommissionAmount decimal.Decimal `json:"commissionAmount" validate:"min=0"`
}

type EmailQuotationRequest struct {
	To string `json:"to" validate:"omitempty,email"`
}

type QuotationFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=10" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type QuotationItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Size        string          `json:"size"`
	Quality     string          `json:"quality"`
	Rate        decimal.Decimal `json:"rate"`
	Cov         decimal.Decimal `json:"cov"`
	Box         int             `json:"box"`
	Weight      decimal.Decimal `json:"weight"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Area        decimal.Decimal `json:"area"`
}

type QuotationResponse struct {
	ID                 uint                    `json:"id"`
	ClientName         string                  `json:"clientName"`
	ContactNo          string                  `json:"contactNo"`
	AltContactNo       string                  `json:"altContactNo"`
	GSTNo              string                  `json:"gstNo"`
	Email              string                  `json:"email"`
	Address            string                  `json:"address"`
	AttendedBy         string                  `json:"attendedBy"`
	Architect          string                  `json:"architect"`
	AdditionalDiscount decimal.Decimal         `json:"additionalDiscount"`
	HeaderSection      string                  `json:"headerSection"`
	BottomSection      string                  `json:"bottomSection"`
	GrandTotal         decimal.Decimal         `json:"grandTotal"`
	PaidAmount         decimal.Decimal         `json:"paidAmount"`
	DueAmount          decimal.Decimal         `json:"dueAmount"`
	IsSettled          bool                    `json:"isSettled"`
	CommissionAmount   decimal.Decimal         `json:"commissionAmount"`
	CreatedAt          string                  `json:"createdAt"`
	Items              []QuotationItemResponse `json:"items"`
}

// QuotationItemFull adds dispatch progress and current stock to a line.
type QuotationItemFull struct {
	QuotationItemResponse
	DispatchedBoxes int             `json:"dispatchedBoxes"`
	DispatchedQty   decimal.Decimal `json:"dispatchedQty"`
	RemainingBoxes  int             `json:"remainingBoxes"`
	RemainingQty    decimal.Decimal `json:"remainingQty"`
	CurrentStock    decimal.Decimal `json:"currentStock"`
	AvailQty        int             `json:"availQty"`
	Batches         []BatchResponse `json:"batches"`
}

// QuotationFull is the complete snapshot handed to renderers and list views.
type QuotationFull struct {
	QuotationResponse
	Items []QuotationItemFull `json:"items"`
}

type QuotationListResponse struct {
	Data       []QuotationFull `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type SettleCommissionResponse struct {
	QuotationID      uint            `json:"quotationId"`
	ArchitectID      string          `json:"architectId"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	LedgerID         uint            `json:"ledgerId"`
	SettlementID     uint            `json:"settlementId"`
}

type ArchitectLedgerEntry struct {
	ID               uint            `json:"id"`
	ArchitectID      string          `json:"architectId"`
	QuotationID      uint            `json:"quotationId"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	SettledAt        string          `json:"settledAt"`
	ClientName       string          `json:"clientName"`
	GrandTotal       decimal.Decimal `json:"grandTotal"`
}
