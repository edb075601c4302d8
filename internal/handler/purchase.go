package handler

import (
	"net/http"

	"tilerp/internal/dto"
	"tilerp/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	svc  service.PurchaseService
	docs service.DocumentService
}

func NewPurchaseHandler(svc service.PurchaseService, docs service.DocumentService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, docs: docs}
}

func (h *PurchaseHandler) Add(c *gin.Context) {
	var req dto.PurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

func (h *PurchaseHandler) Update(c *gin.Context) {
	var req dto.UpdatePurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	var filter dto.PurchaseFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *PurchaseHandler) Get(c *gin.Context) {
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

// Export streams the filtered purchase register as XLSX.
func (h *PurchaseHandler) Export(c *gin.Context) {
	var filter dto.PurchaseFilter
	if !bindQuery(c, &filter) {
		return
	}
	doc, err := h.docs.PurchasesXLSX(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	sendDocument(c, doc, false)
}
