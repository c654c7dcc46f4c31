package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type FeedbackHandler struct {
	feedback ports.FeedbackService
	log      zerolog.Logger
}

func NewFeedbackHandler(feedback ports.FeedbackService, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, log: log}
}

// submitFeedbackJSON is the JSON alternative to the multipart form.
type submitFeedbackJSON struct {
	Image        string `json:"image"`
	ImageName    string `json:"imageName"`
	PredictedSKU string `json:"predicted_sku"`
	CorrectSKU   string `json:"correct_sku"`
}

type approveRequest struct {
	FeedbackID string `json:"feedbackId" validate:"required"`
	Approve    *bool  `json:"approve"    validate:"required"`
	AdminName  string `json:"adminName"`
}

type feedbackView struct {
	*domain.Feedback
	ImageURL string `json:"imageUrl,omitempty"`
}

type feedbackResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message,omitempty"`
	Feedback feedbackView `json:"feedback"`
}

type feedbackListResponse struct {
	Success   bool               `json:"success"`
	Feedbacks []*domain.Feedback `json:"feedbacks"`
}

// Submit records a correction for an image the classifier got wrong.
//
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        file           formData  file    false  "Image"
// @Param        predicted_sku  formData  string  false  "Predicted SKU"
// @Param        correct_sku    formData  string  true   "Correct SKU"
// @Success      201  {object}  feedbackResponse
// @Failure      400  {object}  envelope
// @Router       /api/feedback [post]
func (h *FeedbackHandler) Submit(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	in := ports.SubmitFeedbackInput{Username: p.Username}
	if isMultipart(c) {
		img, err := formImage(c, "file", "image")
		if err != nil {
			return err
		}
		in.Image, in.ImageName = img.Data, img.Name
		in.PredictedSKU = c.FormValue("predicted_sku")
		in.CorrectSKU = c.FormValue("correct_sku")
	} else {
		var req submitFeedbackJSON
		if err := c.Bind(&req); err != nil {
			return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
		}
		data, err := decodeBase64Image(req.Image)
		if err != nil {
			return err
		}
		in.Image, in.ImageName = data, req.ImageName
		in.PredictedSKU, in.CorrectSKU = req.PredictedSKU, req.CorrectSKU
	}

	f, err := h.feedback.Submit(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, feedbackResponse{
		Success:  true,
		Message:  "feedback submitted",
		Feedback: feedbackView{Feedback: f},
	})
}

// ListPending returns pending feedback, newest first.
//
// @Summary      Pending feedback
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum records (default 100, max 500)"
// @Success      200    {object}  feedbackListResponse
// @Failure      403    {object}  envelope
// @Router       /api/feedback/pending [get]
// @Router       /api/admin/feedback/pending [get]
func (h *FeedbackHandler) ListPending(c echo.Context) error {
	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrValidation)
		}
		limit = n
	}

	items, err := h.feedback.ListPending(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Feedback{}
	}
	return c.JSON(http.StatusOK, feedbackListResponse{Success: true, Feedbacks: items})
}

// Get returns one feedback record with a temporary image link.
//
// @Summary      Get feedback
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Feedback id"
// @Success      200  {object}  feedbackResponse
// @Failure      404  {object}  envelope
// @Router       /api/admin/feedback/{id} [get]
func (h *FeedbackHandler) Get(c echo.Context) error {
	f, err := h.feedback.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	// The record is still useful without a link.
	url, err := h.feedback.ImageURL(c.Request().Context(), f)
	if err != nil {
		h.log.Warn().Err(err).Str("feedback_id", f.ID).Msg("failed to sign image url")
	}
	return c.JSON(http.StatusOK, feedbackResponse{Success: true, Feedback: feedbackView{Feedback: f, ImageURL: url}})
}

// Approve approves or rejects a pending record. The reviewer recorded is
// the authenticated caller.
//
// @Summary      Review feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      approveRequest  true  "Decision"
// @Success      200   {object}  envelope
// @Failure      404   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /api/admin/feedback/approve [post]
func (h *FeedbackHandler) Approve(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	f, err := h.feedback.Review(c.Request().Context(), ports.ReviewInput{
		FeedbackID: req.FeedbackID,
		Approve:    *req.Approve,
		AdminName:  p.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okMessage("feedback "+string(f.Status)))
}
