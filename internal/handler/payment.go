package handler

import (
	"net/http"

	"tilerp/internal/dto"
	"tilerp/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct{ svc service.PaymentService }

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Create godoc
// @Summary      Request a payment against a quotation
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePaymentRequest true "Payment request"
// @Success      201  {object} dto.PaymentRequestResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/payment/request [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

func (h *PaymentHandler) Pending(c *gin.Context) {
	resp, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary      Approve or reject a pending payment request
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.UpdatePaymentStatusRequest true "Decision"
// @Success      200  {object} dto.PaymentStatusResponse
// @Failure      409  {object} apierror.APIError
// @Router       /api/payment/update-status [put]
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdatePaymentStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
