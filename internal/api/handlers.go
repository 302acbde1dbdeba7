package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"price-tracker/internal/apperrors"
	"price-tracker/internal/models"
	"price-tracker/internal/tracker"
)

// Tracker is the tracking service the handlers call
type Tracker interface {
	Add(ctx context.Context, userID, url string) (*tracker.AddResult, error)
	ForceAdd(ctx context.Context, userID, url string) (*tracker.AddResult, error)
	Remove(ctx context.Context, userID, identifier string) error
	Get(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error)
	List(ctx context.Context, userID string, opts tracker.ListOptions) ([]models.TrackedProduct, error)
	Refresh(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error)
}

// Pinger reports storage health
type Pinger interface {
	Ping(ctx context.Context) error
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func abortWithError(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logrus.WithError(err).Error("Unexpected error")
		c.AbortWithStatusJSON(status, ErrorResponse{Error: "Internal server error", Code: "INTERNAL"})
		return
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: apperrors.Details(err),
	})
}

type TrackerHandler struct {
	service Tracker
	health  Pinger
}

func NewTrackerHandler(service Tracker, health Pinger) *TrackerHandler {
	return &TrackerHandler{service: service, health: health}
}

// GET /health
func (h *TrackerHandler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			logrus.WithError(err).Error("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GET /api/tracker/user/:userId?platform=&sale=&sort=
func (h *TrackerHandler) ListProducts(c *gin.Context) {
	userID := c.Param("userId")
	if !requireOwner(c, userID) {
		return
	}

	opts := tracker.ListOptions{}
	switch platform := strings.ToLower(c.Query("platform")); platform {
	case "", "all":
	case string(models.PlatformSteam), string(models.PlatformComfy), string(models.PlatformRozetka):
		opts.Platform = models.Platform(platform)
	default:
		abortWithError(c, apperrors.InputValidation("platform must be one of steam, comfy, rozetka", nil))
		return
	}
	opts.SaleOnly = c.Query("sale") == "true"
	opts.SortField, opts.Descending = tracker.ParseSort(c.DefaultQuery("sort", "dateAdded_desc"))

	products, err := h.service.List(c.Request.Context(), userID, opts)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/tracker/product/:userId/:id
func (h *TrackerHandler) GetProduct(c *gin.Context) {
	userID := c.Param("userId")
	if !requireOwner(c, userID) {
		return
	}

	product, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// POST /api/tracker/add
func (h *TrackerHandler) AddProduct(c *gin.Context) {
	h.add(c, false)
}

// POST /api/tracker/add/force
func (h *TrackerHandler) ForceAddProduct(c *gin.Context) {
	h.add(c, true)
}

func (h *TrackerHandler) add(c *gin.Context, force bool) {
	var req tracker.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, apperrors.InputValidation("Invalid request body", err))
		return
	}
	if !requireOwner(c, req.UserID) {
		return
	}

	var res *tracker.AddResult
	var err error
	if force {
		res, err = h.service.ForceAdd(c.Request.Context(), req.UserID, req.URL)
	} else {
		res, err = h.service.Add(c.Request.Context(), req.UserID, req.URL)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	switch {
	case res.SaleNotice != nil:
		c.JSON(http.StatusOK, res.SaleNotice)
	case res.Created:
		c.JSON(http.StatusCreated, res.Product)
	default:
		c.JSON(http.StatusOK, res.Product)
	}
}

// POST /api/tracker/refresh/:userId/:id
func (h *TrackerHandler) RefreshProduct(c *gin.Context) {
	userID := c.Param("userId")
	if !requireOwner(c, userID) {
		return
	}

	product, err := h.service.Refresh(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DELETE /api/tracker/remove/:userId/:id
func (h *TrackerHandler) RemoveProduct(c *gin.Context) {
	userID := c.Param("userId")
	if !requireOwner(c, userID) {
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}
