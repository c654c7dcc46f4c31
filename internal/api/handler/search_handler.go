package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type SearchHandler struct {
	search ports.SearchService
}

func NewSearchHandler(search ports.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchResponse struct {
	Success bool                  `json:"success"`
	Results []domain.SearchResult `json:"results"`
}

// Search finds catalog codes visually similar to the uploaded image.
//
// @Summary      Visual search
// @Tags         search
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image  formData  file  true  "Query image"
// @Success      200    {object}  searchResponse
// @Failure      400    {object}  envelope
// @Failure      502    {object}  envelope
// @Router       /api/search [post]
func (h *SearchHandler) Search(c echo.Context) error {
	img, err := formImage(c, "image", "file")
	if err != nil {
		return err
	}

	results, err := h.search.Search(c.Request().Context(), img)
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return c.JSON(http.StatusOK, searchResponse{Success: true, Results: results})
}
