package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"rentals/internal/logging"
	"rentals/internal/model"
	"rentals/internal/repository"
	"rentals/internal/service"
)

// ListingHandler handles catalog and listing submission requests
type ListingHandler struct {
	listingService *service.ListingService
	defaultLimit   int
	maxLimit       int
	logger         zerolog.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *service.ListingService, defaultLimit, maxLimit int, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		defaultLimit:   defaultLimit,
		maxLimit:       maxLimit,
		logger:         logger,
	}
}

// List handles GET /api/v1/listings
func (h *ListingHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", h.defaultLimit)
	if limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	resp, err := h.listingService.List(c.Request.Context(), limit, offset)
	if err != nil {
		logging.Ctx(c.Request.Context(), h.logger).Error().Err(err).Msg("list properties failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	property, err := h.listingService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if err != nil {
		logging.Ctx(c.Request.Context(), h.logger).Error().Err(err).Str("id", c.Param("id")).Msg("get property failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// Submit handles POST /api/v1/listings
func (h *ListingHandler) Submit(c *gin.Context) {
	var draft model.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid listing",
			"fields": draftFieldErrors(err),
		})
		return
	}

	c.JSON(http.StatusAccepted, h.listingService.Submit(draft))
}

// draftFieldErrors names each ListingDraft field that failed binding.
func draftFieldErrors(err error) []service.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []service.FieldError{{Field: "body", Message: "must be a valid JSON listing"}}
	}

	draftType := reflect.TypeOf(model.ListingDraft{})
	fields := make([]service.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if sf, ok := draftType.FieldByName(fe.StructField()); ok {
			if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag != "" {
				name = tag
			}
		}
		fields = append(fields, service.FieldError{Field: name, Message: bindingMessage(fe)})
	}
	return fields
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
