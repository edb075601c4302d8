package handler

import (
	"net/http"

	"tilerp/internal/apierror"
	"tilerp/internal/dto"
	"tilerp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct{ svc service.ProductService }

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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

// Update godoc
// @Summary      Update a product and its batches
// @Description  Batch quantity changes are written as ledger adjustments.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Product ID"
// @Param        body body dto.UpdateProductRequest true "Product"
// @Success      200  {object} dto.ProductResponse
// @Failure      409  {object} apierror.APIError
// @Router       /api/product/update/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
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

func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
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

// Stock serves GET /product/:id/stock?cov=4.
func (h *ProductHandler) Stock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cov := decimal.Zero
	if raw := c.Query("cov"); raw != "" {
		var err error
		if cov, err = decimal.NewFromString(raw); err != nil || cov.IsNegative() {
			c.JSON(http.StatusBadRequest, apierror.New("invalid cov"))
			return
		}
	}
	resp, err := h.svc.Stock(c.Request.Context(), id, cov)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *ProductHandler) Movements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Movements(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
