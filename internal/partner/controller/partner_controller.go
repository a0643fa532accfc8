package controller

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/dto"
	apperrors "courier/internal/errors"
	"courier/internal/matching"
	"courier/internal/partner/service"
	"courier/internal/server/respond"
)

type PartnerService interface {
	SearchNearby(ctx context.Context, q service.SearchQuery) ([]matching.NearbyPartner, error)
	UpdateAvailability(ctx context.Context, partnerID string, update domain.AvailabilityUpdate) (*domain.Partner, error)
	QuoteFee(mechanism string, distanceKm float64) (*service.FeeQuote, error)
}

type PartnerController struct {
	service PartnerService
	logger  *zap.Logger
}

func NewPartnerController(service PartnerService, logger *zap.Logger) *PartnerController {
	return &PartnerController{
		service: service,
		logger:  logger,
	}
}

func (c *PartnerController) SearchNearby(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))
	query := r.URL.Query()

	var details []apperrors.ValidationDetail
	lat := requiredFloat(query, "latitude", &details)
	lon := requiredFloat(query, "longitude", &details)
	radius := optionalFloat(query, "radius", &details)
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			details = append(details, apperrors.ValidationDetail{Field: "limit", Message: "limit must be a non-negative integer"})
		}
		limit = n
	}
	if len(details) > 0 {
		respond.ValidationError(w, r, traceID, "invalid search parameters", details...)
		return
	}

	partners, err := c.service.SearchNearby(r.Context(), service.SearchQuery{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
		City:      query.Get("city"),
		Limit:     limit,
	})
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, partners)
}

func (c *PartnerController) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.UpdateAvailabilityRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	if req.Version == nil {
		respond.ValidationError(w, r, traceID, "version is required", apperrors.ValidationDetail{
			Field:   "version",
			Message: "version of the last read availability is required",
		})
		return
	}

	partner, err := c.service.UpdateAvailability(r.Context(), chi.URLParam(r, "partnerId"), domain.AvailabilityUpdate{
		IsOnline:    req.IsOnline,
		IsAvailable: req.IsAvailable,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Version:     *req.Version,
	})
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, partner)
}

func (c *PartnerController) QuoteFee(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))
	query := r.URL.Query()

	var details []apperrors.ValidationDetail
	distance := requiredFloat(query, "distance", &details)
	if len(details) > 0 {
		respond.ValidationError(w, r, traceID, "invalid fee quote request", details...)
		return
	}

	quote, err := c.service.QuoteFee(query.Get("mechanism"), distance)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, quote)
}

func requiredFloat(query url.Values, field string, details *[]apperrors.ValidationDetail) float64 {
	if query.Get(field) == "" {
		*details = append(*details, apperrors.ValidationDetail{Field: field, Message: field + " is required"})
		return 0
	}
	return optionalFloat(query, field, details)
}

func optionalFloat(query url.Values, field string, details *[]apperrors.ValidationDetail) float64 {
	raw := query.Get(field)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*details = append(*details, apperrors.ValidationDetail{Field: field, Message: field + " must be a number"})
		return 0
	}
	return v
}
