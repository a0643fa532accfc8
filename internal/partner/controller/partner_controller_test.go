package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
	"courier/internal/matching"
	"courier/internal/partner/service"
)

type mockPartnerService struct {
	SearchNearbyFunc       func(ctx context.Context, q service.SearchQuery) ([]matching.NearbyPartner, error)
	UpdateAvailabilityFunc func(ctx context.Context, partnerID string, update domain.AvailabilityUpdate) (*domain.Partner, error)
	QuoteFeeFunc           func(mechanism string, distanceKm float64) (*service.FeeQuote, error)
}

func (m *mockPartnerService) SearchNearby(ctx context.Context, q service.SearchQuery) ([]matching.NearbyPartner, error) {
	return m.SearchNearbyFunc(ctx, q)
}

func (m *mockPartnerService) UpdateAvailability(ctx context.Context, partnerID string, update domain.AvailabilityUpdate) (*domain.Partner, error) {
	return m.UpdateAvailabilityFunc(ctx, partnerID, update)
}

func (m *mockPartnerService) QuoteFee(mechanism string, distanceKm float64) (*service.FeeQuote, error) {
	return m.QuoteFeeFunc(mechanism, distanceKm)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSearchNearby_ParsesQuery(t *testing.T) {
	var captured service.SearchQuery
	svc := &mockPartnerService{
		SearchNearbyFunc: func(ctx context.Context, q service.SearchQuery) ([]matching.NearbyPartner, error) {
			captured = q
			return []matching.NearbyPartner{{
				Partner:      domain.Partner{ID: "part-1"},
				Distance:     1.25,
				DistanceText: "1.3 km",
			}}, nil
		},
	}
	ctrl := NewPartnerController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/partners/search/nearby?latitude=9.01&longitude=38.76&radius=5&city=Addis&limit=3", nil)
	rec := httptest.NewRecorder()

	ctrl.SearchNearby(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SearchQuery{Latitude: 9.01, Longitude: 38.76, RadiusKm: 5, City: "Addis", Limit: 3}, captured)

	data := decodeBody(t, rec)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "part-1", data[0].(map[string]interface{})["id"])
	assert.Equal(t, 1.25, data[0].(map[string]interface{})["distance"])
}

func TestSearchNearby_MissingCoordinates(t *testing.T) {
	ctrl := NewPartnerController(&mockPartnerService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/partners/search/nearby?radius=abc", nil)
	rec := httptest.NewRecorder()

	ctrl.SearchNearby(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["details"].([]interface{})
	assert.Len(t, details, 3)
}

func TestUpdateAvailability_RequiresVersion(t *testing.T) {
	ctrl := NewPartnerController(&mockPartnerService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/partners/part-1/availability", strings.NewReader(`{"isOnline":true}`))
	rec := httptest.NewRecorder()

	ctrl.UpdateAvailability(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAvailability_Success(t *testing.T) {
	var (
		capturedID     string
		capturedUpdate domain.AvailabilityUpdate
	)
	svc := &mockPartnerService{
		UpdateAvailabilityFunc: func(ctx context.Context, partnerID string, update domain.AvailabilityUpdate) (*domain.Partner, error) {
			capturedID = partnerID
			capturedUpdate = update
			return &domain.Partner{ID: partnerID, Availability: domain.Availability{Version: 4}}, nil
		},
	}
	ctrl := NewPartnerController(svc, zap.NewNop())

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("partnerId", "part-1")
	req := httptest.NewRequest(http.MethodPut, "/partners/part-1/availability",
		strings.NewReader(`{"isAvailable":false,"latitude":9.0,"longitude":38.7,"version":3}`))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	ctrl.UpdateAvailability(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "part-1", capturedID)
	assert.Equal(t, int64(3), capturedUpdate.Version)
	assert.Nil(t, capturedUpdate.IsOnline)
	require.NotNil(t, capturedUpdate.IsAvailable)
	assert.False(t, *capturedUpdate.IsAvailable)
	require.NotNil(t, capturedUpdate.Latitude)
	assert.InDelta(t, 9.0, *capturedUpdate.Latitude, 1e-9)
}

func TestUpdateAvailability_StaleVersion(t *testing.T) {
	svc := &mockPartnerService{
		UpdateAvailabilityFunc: func(ctx context.Context, partnerID string, update domain.AvailabilityUpdate) (*domain.Partner, error) {
			return nil, apperrors.NewConflictError("availability version is stale")
		},
	}
	ctrl := NewPartnerController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/partners/part-1/availability", strings.NewReader(`{"version":1}`))
	rec := httptest.NewRecorder()

	ctrl.UpdateAvailability(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestQuoteFee_Success(t *testing.T) {
	svc := &mockPartnerService{
		QuoteFeeFunc: func(mechanism string, distanceKm float64) (*service.FeeQuote, error) {
			assert.Equal(t, "motorbike", mechanism)
			assert.InDelta(t, 4.5, distanceKm, 1e-9)
			return &service.FeeQuote{Mechanism: mechanism, DistanceKm: distanceKm, BaseFee: 50, Fee: 95}, nil
		},
	}
	ctrl := NewPartnerController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/partners/fee-quote?mechanism=motorbike&distance=4.5", nil)
	rec := httptest.NewRecorder()

	ctrl.QuoteFee(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 95.0, data["fee"])
}

func TestQuoteFee_UnknownMechanism(t *testing.T) {
	svc := &mockPartnerService{
		QuoteFeeFunc: func(mechanism string, distanceKm float64) (*service.FeeQuote, error) {
			return nil, apperrors.NewValidationError("invalid fee quote request", apperrors.ValidationDetail{
				Field:   "mechanism",
				Message: "unknown delivery mechanism",
			})
		},
	}
	ctrl := NewPartnerController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/partners/fee-quote?mechanism=rocket&distance=1", nil)
	rec := httptest.NewRecorder()

	ctrl.QuoteFee(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteFee_MissingDistance(t *testing.T) {
	ctrl := NewPartnerController(&mockPartnerService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/partners/fee-quote?mechanism=motorbike", nil)
	rec := httptest.NewRecorder()

	ctrl.QuoteFee(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
