package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DriverDetails struct {
	DeliveryBoy string `json:"deliveryBoy" validate:"max=255"`
	Contact     string `json:"contact"     validate:"max=50"`
	Tempo       string `json:"tempo"       validate:"max=50"`
}

type DispatchItem struct {
	ProductID      uint            `json:"productId"      validate:"required"`
	ProductName    string          `json:"productName"    validate:"max=255"`
	DispatchBoxes  int             `json:"dispatchBoxes"  validate:"gt=0"`
	RemainingStock decimal.Decimal `json:"remainingStock"`
}

type GenerateChallanRequest struct {
	QuotationID   uint           `json:"quotationId"   validate:"required"`
	Client        string         `json:"client"        validate:"max=255"`
	Contact       string         `json:"contact"       validate:"max=50"`
	Address       string         `json:"address"`
	DriverDetails DriverDetails  `json:"driverDetails"`
	Items         []DispatchItem `json:"items"         validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DeductionResponse struct {
	BatchID uint            `json:"batchId"`
	BatchNo string          `json:"batchNo"`
	Qty     decimal.Decimal `json:"qty"`
}

type ChallanItemResponse struct {
	ID             uint                `json:"id"`
	ProductID      uint                `json:"productId"`
	ProductName    string              `json:"productName"`
	DispatchBoxes  int                 `json:"dispatchBoxes"`
	DispatchQty    decimal.Decimal     `json:"dispatchQty"`
	RemainingStock decimal.Decimal     `json:"remainingStock"`
	Deductions     []DeductionResponse `json:"deductions"`
}

type ChallanResponse struct {
	ID            uint                  `json:"id"`
	QuotationID   uint                  `json:"quotationId"`
	Client        string                `json:"client"`
	Contact       string                `json:"contact"`
	Address       string                `json:"address"`
	DeliveryBoy   string                `json:"deliveryBoy"`
	DriverContact string                `json:"driverContact"`
	Tempo         string                `json:"tempo"`
	CreatedAt     string                `json:"createdAt"`
	TotalItems    int                   `json:"totalItems"`
	Items         []ChallanItemResponse `json:"items"`
}
