package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type UploadHandler struct {
	upload ports.UploadService
}

func NewUploadHandler(upload ports.UploadService) *UploadHandler {
	return &UploadHandler{upload: upload}
}

type uploadResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Upload  *domain.Upload `json:"upload"`
}

// Upload adds a reference image for a SKU to the classification dataset.
//
// @Summary      Upload reference image
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file      formData  file    true  "Image"
// @Param        sku_code  formData  string  true  "SKU code"
// @Success      201       {object}  uploadResponse
// @Failure      400       {object}  envelope
// @Failure      502       {object}  envelope
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	img, err := formImage(c, "file", "image")
	if err != nil {
		return err
	}

	u, err := h.upload.Upload(c.Request().Context(), ports.UploadInput{
		Image:    img,
		SKU:      c.FormValue("sku_code"),
		Username: p.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploadResponse{
		Success: true,
		Message: "image uploaded for " + u.SKU,
		Upload:  u,
	})
}
