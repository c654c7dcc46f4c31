package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type codesResponse struct {
	Success bool             `json:"success"`
	Codes   []domain.SkuCode `json:"codes"`
}

type statsResponse struct {
	Success bool                `json:"success"`
	Stats   domain.DatasetStats `json:"stats"`
}

type validateRequest struct {
	SkuCode string `json:"sku_code" validate:"required"`
}

type validateResponse struct {
	Success     bool   `json:"success"`
	Valid       bool   `json:"valid"`
	Description string `json:"description,omitempty"`
}

// Codes lists the distinct catalog codes.
//
// @Summary      List SKU codes
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  codesResponse
// @Failure      502  {object}  envelope
// @Router       /api/codes [get]
func (h *CatalogHandler) Codes(c echo.Context) error {
	codes, err := h.catalog.ListCodes(c.Request().Context())
	if err != nil {
		return err
	}
	if codes == nil {
		codes = []domain.SkuCode{}
	}
	return c.JSON(http.StatusOK, codesResponse{Success: true, Codes: codes})
}

// Stats returns dataset counts.
//
// @Summary      Dataset statistics
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      502  {object}  envelope
// @Router       /api/stats [get]
func (h *CatalogHandler) Stats(c echo.Context) error {
	stats, err := h.catalog.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Success: true, Stats: *stats})
}

// Validate reports whether a SKU code exists in the catalog.
//
// @Summary      Validate a SKU code
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      validateRequest  true  "Code to check"
// @Success      200   {object}  validateResponse
// @Failure      400   {object}  envelope
// @Router       /api/validate [post]
func (h *CatalogHandler) Validate(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, valid, err := h.catalog.ValidateCode(c.Request().Context(), req.SkuCode)
	if err != nil {
		return err
	}
	resp := validateResponse{Success: true, Valid: valid}
	if entry != nil {
		resp.Description = entry.Description
	}
	return c.JSON(http.StatusOK, resp)
}
