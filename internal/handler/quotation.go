package handler

import (
	"errors"
	"io"
	"net/http"

	"tilerp/internal/dto"
	"tilerp/internal/service"

	"github.com/gin-gonic/gin"
)

type QuotationHandler struct {
	svc  service.QuotationService
	docs service.DocumentService
}

func NewQuotationHandler(svc service.QuotationService, docs service.DocumentService) *QuotationHandler {
	return &QuotationHandler{svc: svc, docs: docs}
}

func (h *QuotationHandler) Save(c *gin.Context) {
	var req dto.SaveQuotationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

func (h *QuotationHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.SaveQuotationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *QuotationHandler) List(c *gin.Context) {
	var filter dto.QuotationFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListFull(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *QuotationHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
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

// Print serves the quotation PDF; ?mode=qname prints product names instead
// of codes.
func (h *QuotationHandler) Print(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doc, err := h.docs.QuotationPDF(c.Request.Context(), id, c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendDocument(c, doc, true)
}

// Email queues the quotation PDF for delivery. The body is optional.
func (h *QuotationHandler) Email(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.EmailQuotationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badJSON(c, err)
			return
		}
		if !runValidation(c, &req) {
			return
		}
	}
	if err := h.docs.EmailQuotation(c.Request.Context(), id, req.To); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusAccepted, "quotation e-mail queued")
}

func (h *QuotationHandler) SettleCommission(c *gin.Context) {
	var req dto.SettleCommissionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SettleCommission(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *QuotationHandler) ByArchitect(c *gin.Context) {
	resp, err := h.svc.ByArchitect(c.Request.Context(), c.Param("architectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *QuotationHandler) ArchitectLedger(c *gin.Context) {
	resp, err := h.svc.ArchitectLedger(c.Request.Context(), c.Param("architectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
