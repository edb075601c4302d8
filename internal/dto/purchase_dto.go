package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PurchaseRequest struct {
	PurchaseDate  string                `json:"purchaseDate"  validate:"omitempty,datetime=2006-01-02"`
	BillNo        string                `json:"billNo"        validate:"max=50"`
	ClientName    string                `json:"clientName"    validate:"max=255"`
	ClientContact string                `json:"clientContact" validate:"max=50"`
	SubTotal      decimal.Decimal       `json:"subTotal"      validate:"min=0"`
	Items         []PurchaseItemRequest `json:"items"         validate:"required,min=1,dive"`
}

// PurchaseItemRequest is one bill line. Lines without qty or batchNo are
// ignored. When ProductID is zero a product is created from the name fields.
type PurchaseItemRequest struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName" validate:"max=255"`
	Size        string          `json:"size"`
	Quality     string          `json:"quality"`
	BatchNo     string          `json:"batchNo"     validate:"max=100"`
	Qty         decimal.Decimal `json:"qty"         validate:"min=0"`
	Rate        decimal.Decimal `json:"rate"        validate:"min=0"`
	Cov         decimal.Decimal `json:"cov"         validate:"min=0"`
	Total       decimal.Decimal `json:"total"`
	Godown      string          `json:"godown"      validate:"max=100"`
}

type UpdatePurchaseRequest struct {
	PurchaseID uint `json:"purchaseId" validate:"required"`
	PurchaseRequest
}

type PurchaseFilter struct {
	BillNo string `form:"billNo"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PurchaseItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	BatchNo     string          `json:"batchNo"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
	Cov         decimal.Decimal `json:"cov"`
	Total       decimal.Decimal `json:"total"`
	Godown      string          `json:"godown"`
}

type PurchaseResponse struct {
	ID            uint                   `json:"id"`
	BillNo        string                 `json:"billNo"`
	PurchaseDate  *string                `json:"purchaseDate"`
	ClientName    string                 `json:"clientName"`
	ClientContact string                 `json:"clientContact"`
	SubTotal      decimal.Decimal        `json:"subTotal"`
	CreatedAt     string                 `json:"createdAt"`
	Items         []PurchaseItemResponse `json:"items"`
}

type PurchaseListResponse struct {
	Data  []PurchaseResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
