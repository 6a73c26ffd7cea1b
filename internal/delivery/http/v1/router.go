package v1

import (
	"net/http"

	"go-contact-review-backend/internal/delivery/http/middleware"
	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	IngestUC domain.IngestUsecase
	ReviewUC domain.ReviewUsecase
	HealthUC usecase.HealthUsecase
}

// NewRouter builds the API router. Routes are unversioned: the review driver
// talks to /upload-csv, /review-contact and /contacts/:session_id directly.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	// Liveness, no business logic
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "CSV Contact Manager Agent is running!"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.HealthUC.Check(c.Request.Context()))
	})

	root := r.Group("")
	NewSessionHandler(root, deps.IngestUC, deps.ReviewUC)

	return r
}
