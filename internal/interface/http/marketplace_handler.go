package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/application"
	"github.com/rcmp123/marketplace/pkg/helpers"
	"github.com/rcmp123/marketplace/pkg/response"
	"github.com/rcmp123/marketplace/pkg/validation"
)

type MarketplaceHandler struct {
	Users    *application.UserService
	Listings *application.ListingService
	Logger   logrus.FieldLogger
}

func NewMarketplaceHandler(users *application.UserService, listings *application.ListingService, logger logrus.FieldLogger) *MarketplaceHandler {
	return &MarketplaceHandler{Users: users, Listings: listings, Logger: logger}
}

type registerRequest struct {
	Username string `form:"username" json:"username" binding:"required,username"`
	Password string `form:"password" json:"password" binding:"required,pwd"`
}

// Price and SellerID are pointers so that an absent field fails "required"
// while an explicit 0 is accepted.
type createListingRequest struct {
	Title       string                `form:"title" binding:"required"`
	Description string                `form:"description" binding:"required"`
	Price       *float64              `form:"price" binding:"required,finite"`
	SellerID    *int64                `form:"seller_id" binding:"required"`
	Image       *multipart.FileHeader `form:"image" binding:"required"`
}

func (h *MarketplaceHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	u, err := h.Users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username})
}

func (h *MarketplaceHandler) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	f, err := req.Image.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	l, err := h.Listings.CreateListing(c.Request.Context(), application.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		SellerID:    *req.SellerID,
		Image: &application.ImageUpload{
			Filename:    req.Image.Filename,
			ContentType: req.Image.Header.Get("Content-Type"),
			Size:        req.Image.Size,
			Content:     f,
		},
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing_id": l.ID})
}

func (h *MarketplaceHandler) GetListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", map[string]string{"id": "must be an integer"})
		return
	}
	l, err := h.Listings.GetListing(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, l, "listing")
}

func (h *MarketplaceHandler) bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Abort(c, http.StatusRequestEntityTooLarge, "payload too large",
			map[string]string{"payload": "must be at most " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"})
		return
	}
	response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

// fail maps service errors onto HTTP responses.
func (h *MarketplaceHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrUsernameTaken):
		response.Abort(c, http.StatusBadRequest, "username already exists", "conflict")
	case errors.Is(err, application.ErrMissingCredential):
		response.Abort(c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": err.Error()})
	case errors.Is(err, helpers.ErrPasswordTooLong):
		response.Abort(c, http.StatusBadRequest, "invalid payload", map[string]string{"password": err.Error()})
	case errors.Is(err, application.ErrInvalidPrice):
		response.Abort(c, http.StatusBadRequest, "invalid payload", map[string]string{"price": "must be a finite number"})
	case errors.Is(err, application.ErrImageRequired):
		response.Abort(c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "is required"})
	case errors.Is(err, application.ErrListingNotFound):
		response.Abort(c, http.StatusNotFound, "listing not found", nil)
	default:
		helpers.LogError(h.Logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
		response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
