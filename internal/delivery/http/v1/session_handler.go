package v1

import (
	"io"
	"net/http"

	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	ingestUC domain.IngestUsecase
	reviewUC domain.ReviewUsecase
}

// NewSessionHandler registers the CSV upload and contact review routes
func NewSessionHandler(r *gin.RouterGroup, ingestUC domain.IngestUsecase, reviewUC domain.ReviewUsecase) {
	handler := &SessionHandler{
		ingestUC: ingestUC,
		reviewUC: reviewUC,
	}

	r.POST("/upload-csv", handler.UploadCSV)
	r.POST("/review-contact", handler.ReviewContact)
	r.GET("/contacts/:session_id", handler.ListContacts)
}

// UploadCSV godoc
// @Summary      Upload a CSV of contacts
// @Description  Parse and validate an uploaded CSV, create a review session and return a preview of the first contacts.
// @Tags         sessions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file (name, email, LinkedIn column)"
// @Success      200  {object}  domain.UploadResult
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /upload-csv [post]
func (h *SessionHandler) UploadCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	result, err := h.ingestUC.Ingest(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReviewContact godoc
// @Summary      Review one contact
// @Description  Dispatch a contact to the requested target services and record the per-target outcome.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        review  body      domain.ReviewRequest  true  "Review decision"
// @Success      200  {object}  domain.ReviewResult
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /review-contact [post]
func (h *SessionHandler) ReviewContact(c *gin.Context) {
	var req domain.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	result, err := h.reviewUC.Review(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListContacts godoc
// @Summary      List session contacts
// @Description  Return every validated contact of a review session in row order.
// @Tags         sessions
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  domain.SessionContacts
// @Failure      404  {object}  response.Response
// @Router       /contacts/{session_id} [get]
func (h *SessionHandler) ListContacts(c *gin.Context) {
	result, err := h.reviewUC.ListContacts(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
