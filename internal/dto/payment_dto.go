package dto

import "github.com/shopspring/decimal"

type CreatePaymentRequest struct {
	QuotationID uint            `json:"quotation_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"       validate:"gt=0"`
	PaymentType string          `json:"paymentType"  validate:"max=50"`
	Remark      string          `json:"remark"`
}

type UpdatePaymentStatusRequest struct {
	RequestID uint   `json:"requestId" validate:"required"`
	Status    string `json:"status"    validate:"required,oneof=approved rejected"`
}

type PaymentRequestResponse struct {
	ID          uint            `json:"id"`
	QuotationID uint            `json:"quotationId"`
	ClientName  string          `json:"client_name"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"paymentType"`
	Remark      string          `json:"remark"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
}

type PaymentStatusResponse struct {
	RequestID   uint            `json:"requestId"`
	Status      string          `json:"status"`
	QuotationID uint            `json:"quotationId"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	DueAmount   decimal.Decimal `json:"dueAmount"`
}
