package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name        string                `json:"name"        validate:"required,min=1,max=255"`
	Size        string                `json:"size"        validate:"max=100"`
	Brand       string                `json:"brand"       validate:"max=100"`
	Category    string                `json:"category"    validate:"max=100"`
	Quality     string                `json:"quality"     validate:"max=100"`
	Rate        decimal.Decimal       `json:"rate"        validate:"min=0"`
	Status      string                `json:"status"      validate:"omitempty,oneof=active inactive"`
	Description string                `json:"description"`
	Image       string                `json:"image"`
	AvailQty    int                   `json:"availQty"    validate:"min=0"`
	Batches     []InitialBatchRequest `json:"batches"     validate:"dive"`
}

// InitialBatchRequest is an opening balance credited when the product is created.
type InitialBatchRequest struct {
	BatchNo  string          `json:"batchNo"  validate:"required,max=100"`
	Qty      decimal.Decimal `json:"qty"      validate:"gt=0"`
	Location string          `json:"location" validate:"max=100"`
}

// UpdateProductRequest replaces catalog fields and sets each listed batch to
// the given quantity. Batches missing from the list are removed.
type UpdateProductRequest struct {
	Name        string               `json:"name"        validate:"required,min=1,max=255"`
	Size        string               `json:"size"        validate:"max=100"`
	Brand       string               `json:"brand"       validate:"max=100"`
	Category    string               `json:"category"    validate:"max=100"`
	Quality     string               `json:"quality"     validate:"max=100"`
	Rate        decimal.Decimal      `json:"rate"        validate:"min=0"`
	Status      string               `json:"status"      validate:"omitempty,oneof=active inactive"`
	Description string               `json:"description"`
	Image       string               `json:"image"`
	Batches     []BatchUpdateRequest `json:"batches"     validate:"dive"`
}

type BatchUpdateRequest struct {
	BatchNo  string          `json:"batchNo"  validate:"required,max=100"`
	Qty      decimal.Decimal `json:"qty"      validate:"min=0"`
	Location string          `json:"location" validate:"max=100"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search string `form:"search"`
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type MovementFilter struct {
	Page  int `form:"page,default=1"    validate:"min=1"`
	Limit int `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BatchResponse struct {
	ID       uint            `json:"id"`
	BatchNo  string          `json:"batchNo"`
	Qty      decimal.Decimal `json:"qty"`
	Location string          `json:"location"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Size        string          `json:"size"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Quality     string          `json:"quality"`
	Rate        decimal.Decimal `json:"rate"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	AvailQty    int             `json:"availQty"`
	Batches     []BatchResponse `json:"batches"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// BatchStockResponse compares the materialized batch quantity with the sum
// of its ledger entries.
type BatchStockResponse struct {
	BatchID   uint            `json:"batchId"`
	BatchNo   string          `json:"batchNo"`
	Location  string          `json:"location"`
	Qty       decimal.Decimal `json:"qty"`
	LedgerQty decimal.Decimal `json:"ledgerQty"`
	Drift     bool            `json:"drift"`
}

type StockSnapshotResponse struct {
	ProductID     uint                 `json:"productId"`
	AvailQty      int                  `json:"availQty"`
	LedgerBoxes   decimal.Decimal      `json:"ledgerBoxes"`
	TotalQty      decimal.Decimal      `json:"totalQty"`
	Cov           decimal.Decimal      `json:"cov"`
	BoxEquivalent decimal.Decimal      `json:"boxEquivalent"`
	Drift         bool                 `json:"drift"`
	Batches       []BatchStockResponse `json:"batches"`
}

type MovementResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"productId"`
	BatchID   *uint           `json:"batchId"`
	Kind      string          `json:"kind"`
	Unit      string          `json:"unit"`
	Delta     decimal.Decimal `json:"delta"`
	RefType   string          `json:"refType"`
	RefID     uint            `json:"refId"`
	CreatedAt string          `json:"createdAt"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
