package handler

import (
	"net/http"

	"tilerp/internal/dto"
	"tilerp/internal/service"

	"github.com/gin-gonic/gin"
)

type ChallanHandler struct {
	svc  service.DispatchService
	docs service.DocumentService
}

func NewChallanHandler(svc service.DispatchService, docs service.DocumentService) *ChallanHandler {
	return &ChallanHandler{svc: svc, docs: docs}
}

// Generate godoc
// @Summary      Generate a delivery challan
// @Description  Debits batches FIFO for each item under the quotation lock and records the deductions.
// @Tags         challans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GenerateChallanRequest true "Items to dispatch"
// @Success      201  {object} dto.ChallanResponse
// @Failure      409  {object} apierror.APIError
// @Router       /api/Quotation/generate-dc [post]
func (h *ChallanHandler) Generate(c *gin.Context) {
	var req dto.GenerateChallanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// Delete godoc
// @Summary      Delete a delivery challan
// @Description  Credits every deducted batch back and restores the box counter.
// @Tags         challans
// @Produce      json
// @Security     BearerAuth
// @Param        challanId path int true "Challan ID"
// @Success      200  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/Quotation/delivery-challan/delete/{challanId} [delete]
func (h *ChallanHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "challanId")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "delivery challan deleted and stock restored")
}

func (h *ChallanHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *ChallanHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "challanId")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *ChallanHandler) Print(c *gin.Context) {
	id, ok := paramID(c, "challanId")
	if !ok {
		return
	}
	doc, err := h.docs.ChallanPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendDocument(c, doc, true)
}
