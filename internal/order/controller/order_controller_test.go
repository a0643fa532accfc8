package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
	"courier/internal/order/service"
	"courier/internal/server/respond"
)

type mockOrderService struct {
	CreateOrderFunc           func(ctx context.Context, in service.CreateOrderInput) (*service.CreateOrderResult, error)
	ListOrdersFunc            func(ctx context.Context, in service.ListOrdersInput) ([]domain.Order, error)
	GetOrderFunc              func(ctx context.Context, id string) (*domain.Order, error)
	MatchWithTravelerFunc     func(ctx context.Context, orderID, travelerID string) (*domain.Order, error)
	AssignToPartnerFunc       func(ctx context.Context, orderID, partnerID string) (*domain.Order, error)
	UpdateStatusFunc          func(ctx context.Context, orderID, status, message, location string) (*domain.Order, error)
	ConfirmDeliveryFunc       func(ctx context.Context, orderID string) (*domain.Order, error)
	CancelFunc                func(ctx context.Context, orderID, reason string) (*domain.Order, error)
	CreateDeliveryRequestFunc func(ctx context.Context, in service.DeliveryRequestInput) (*service.DeliveryRequestResult, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*service.CreateOrderResult, error) {
	return m.CreateOrderFunc(ctx, in)
}

func (m *mockOrderService) ListOrders(ctx context.Context, in service.ListOrdersInput) ([]domain.Order, error) {
	return m.ListOrdersFunc(ctx, in)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.GetOrderFunc(ctx, id)
}

func (m *mockOrderService) MatchWithTraveler(ctx context.Context, orderID, travelerID string) (*domain.Order, error) {
	return m.MatchWithTravelerFunc(ctx, orderID, travelerID)
}

func (m *mockOrderService) AssignToPartner(ctx context.Context, orderID, partnerID string) (*domain.Order, error) {
	return m.AssignToPartnerFunc(ctx, orderID, partnerID)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID, status, message, location string) (*domain.Order, error) {
	return m.UpdateStatusFunc(ctx, orderID, status, message, location)
}

func (m *mockOrderService) ConfirmDelivery(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.ConfirmDeliveryFunc(ctx, orderID)
}

func (m *mockOrderService) Cancel(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	return m.CancelFunc(ctx, orderID, reason)
}

func (m *mockOrderService) CreateDeliveryRequest(ctx context.Context, in service.DeliveryRequestInput) (*service.DeliveryRequestResult, error) {
	return m.CreateDeliveryRequestFunc(ctx, in)
}

func sampleOrder(status domain.OrderStatus) *domain.Order {
	o := domain.NewOrder("ord-1", "ORD-20260301-AB12CD", "buyer-1", domain.DeliveryMethodTraveler,
		domain.OrderInfo{ProductName: "Laptop"}, "ETB", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	o.Status = status
	return o
}

func withOrderID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateOrder_Success(t *testing.T) {
	var captured service.CreateOrderInput
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, in service.CreateOrderInput) (*service.CreateOrderResult, error) {
			captured = in
			return &service.CreateOrderResult{
				Order:              sampleOrder(domain.OrderStatusPending),
				TravelerCandidates: []domain.Traveler{{ID: "trav-1"}},
			}, nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	body := `{"buyerId":"buyer-1","deliveryMethod":"traveler","orderInfo":{"productName":"Laptop","productPrice":1000}}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	ctrl.CreateOrder(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "buyer-1", captured.BuyerID)
	assert.Equal(t, "traveler", captured.DeliveryMethod)
	assert.Equal(t, "Laptop", captured.Info.ProductName)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, respond.StatusSuccess, env["status"])
	assert.NotEmpty(t, env["traceId"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "ord-1", data["order"].(map[string]interface{})["id"])
	assert.Len(t, data["candidates"], 1)
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	ctrl := NewOrderController(&mockOrderService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	ctrl.CreateOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, respond.StatusError, env["status"])
}

func TestCreateOrder_ValidationError(t *testing.T) {
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, in service.CreateOrderInput) (*service.CreateOrderResult, error) {
			return nil, apperrors.NewValidationError("invalid order", apperrors.ValidationDetail{
				Field:   "buyerId",
				Message: "buyerId is required",
			})
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	ctrl.CreateOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	details := env["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "buyerId", details[0].(map[string]interface{})["field"])
}

func TestListOrders_PassesFilters(t *testing.T) {
	var captured service.ListOrdersInput
	svc := &mockOrderService{
		ListOrdersFunc: func(ctx context.Context, in service.ListOrdersInput) ([]domain.Order, error) {
			captured = in
			return []domain.Order{*sampleOrder(domain.OrderStatusPending)}, nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/orders?status=pending&deliveryMethod=traveler&buyerId=buyer-1&limit=20", nil)
	rec := httptest.NewRecorder()

	ctrl.ListOrders(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ListOrdersInput{
		Status:         "pending",
		DeliveryMethod: "traveler",
		BuyerID:        "buyer-1",
		Limit:          20,
	}, captured)
}

func TestListOrders_InvalidLimit(t *testing.T) {
	ctrl := NewOrderController(&mockOrderService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/orders?limit=ten", nil)
	rec := httptest.NewRecorder()

	ctrl.ListOrders(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := &mockOrderService{
		GetOrderFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			assert.Equal(t, "missing", id)
			return nil, apperrors.NewNotFoundError("order not found")
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := withOrderID(httptest.NewRequest(http.MethodGet, "/orders/missing", nil), "missing")
	rec := httptest.NewRecorder()

	ctrl.GetOrder(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "order not found", env["message"])
}

func TestMatchWithTraveler_InvalidState(t *testing.T) {
	svc := &mockOrderService{
		MatchWithTravelerFunc: func(ctx context.Context, orderID, travelerID string) (*domain.Order, error) {
			assert.Equal(t, "ord-1", orderID)
			assert.Equal(t, "trav-1", travelerID)
			return nil, apperrors.NewInvalidStateError("order is not pending")
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/orders/match/traveler", strings.NewReader(`{"orderId":"ord-1","travelerId":"trav-1"}`))
	rec := httptest.NewRecorder()

	ctrl.MatchWithTraveler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignToPartner_Success(t *testing.T) {
	svc := &mockOrderService{
		AssignToPartnerFunc: func(ctx context.Context, orderID, partnerID string) (*domain.Order, error) {
			o := sampleOrder(domain.OrderStatusAssigned)
			o.AssignedPartnerID = &partnerID
			return o, nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/orders/assign/partner", strings.NewReader(`{"orderId":"ord-1","partnerId":"part-1"}`))
	rec := httptest.NewRecorder()

	ctrl.AssignToPartner(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "assigned", data["status"])
	assert.Equal(t, "part-1", data["assignedPartnerId"])
}

func TestUpdateStatus_UsesPathParam(t *testing.T) {
	svc := &mockOrderService{
		UpdateStatusFunc: func(ctx context.Context, orderID, status, message, location string) (*domain.Order, error) {
			assert.Equal(t, "ord-1", orderID)
			assert.Equal(t, "picked_up", status)
			assert.Equal(t, "collected at shop", message)
			assert.Equal(t, "Bole", location)
			return sampleOrder(domain.OrderStatusPickedUp), nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	body := `{"status":"picked_up","message":"collected at shop","location":"Bole"}`
	req := withOrderID(httptest.NewRequest(http.MethodPut, "/orders/ord-1/status", strings.NewReader(body)), "ord-1")
	rec := httptest.NewRecorder()

	ctrl.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus_Conflict(t *testing.T) {
	svc := &mockOrderService{
		UpdateStatusFunc: func(ctx context.Context, orderID, status, message, location string) (*domain.Order, error) {
			return nil, apperrors.NewConflictError("order was modified concurrently")
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := withOrderID(httptest.NewRequest(http.MethodPut, "/orders/ord-1/status", strings.NewReader(`{"status":"delivered"}`)), "ord-1")
	rec := httptest.NewRecorder()

	ctrl.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConfirmDelivery_Success(t *testing.T) {
	svc := &mockOrderService{
		ConfirmDeliveryFunc: func(ctx context.Context, orderID string) (*domain.Order, error) {
			o := sampleOrder(domain.OrderStatusCompleted)
			o.DeliveryConfirmed = true
			return o, nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := withOrderID(httptest.NewRequest(http.MethodPost, "/orders/ord-1/confirm", nil), "ord-1")
	rec := httptest.NewRecorder()

	ctrl.ConfirmDelivery(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, true, data["deliveryConfirmed"])
}

func TestCancel_WithoutBody(t *testing.T) {
	var reason string
	svc := &mockOrderService{
		CancelFunc: func(ctx context.Context, orderID, r string) (*domain.Order, error) {
			reason = r
			return sampleOrder(domain.OrderStatusCancelled), nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := withOrderID(httptest.NewRequest(http.MethodPost, "/orders/ord-1/cancel", nil), "ord-1")
	rec := httptest.NewRecorder()

	ctrl.Cancel(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, reason)
}

func TestCancel_WithReason(t *testing.T) {
	var reason string
	svc := &mockOrderService{
		CancelFunc: func(ctx context.Context, orderID, r string) (*domain.Order, error) {
			reason = r
			return sampleOrder(domain.OrderStatusCancelled), nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := withOrderID(httptest.NewRequest(http.MethodPost, "/orders/ord-1/cancel", strings.NewReader(`{"reason":"buyer changed mind"}`)), "ord-1")
	rec := httptest.NewRecorder()

	ctrl.Cancel(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer changed mind", reason)
}

func TestCreateDeliveryRequest_Success(t *testing.T) {
	var captured service.DeliveryRequestInput
	svc := &mockOrderService{
		CreateDeliveryRequestFunc: func(ctx context.Context, in service.DeliveryRequestInput) (*service.DeliveryRequestResult, error) {
			captured = in
			return &service.DeliveryRequestResult{
				Order:            sampleOrder(domain.OrderStatusPending),
				TripDistanceKm:   3.2,
				TripDistanceText: "3.2 km",
				Partners:         []service.QuotedPartner{},
			}, nil
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	body := `{"buyerId":"buyer-1","pickupLocation":{"latitude":9.01,"longitude":38.76},"deliveryLocation":{"latitude":9.03,"longitude":38.74,"city":"Addis Ababa"},"itemDescription":"Documents"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/request", strings.NewReader(body))
	rec := httptest.NewRecorder()

	ctrl.CreateDeliveryRequest(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, captured.PickupLocation)
	assert.InDelta(t, 9.01, captured.PickupLocation.Latitude, 1e-9)
	assert.Equal(t, "Addis Ababa", captured.DeliveryLocation.City)
	assert.Equal(t, "Documents", captured.ItemDescription)
}

func TestCreateDeliveryRequest_UnexpectedError(t *testing.T) {
	svc := &mockOrderService{
		CreateDeliveryRequestFunc: func(ctx context.Context, in service.DeliveryRequestInput) (*service.DeliveryRequestResult, error) {
			return nil, assert.AnError
		},
	}
	ctrl := NewOrderController(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/orders/request", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	ctrl.CreateDeliveryRequest(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "an unexpected error occurred", decodeEnvelope(t, rec)["message"])
}
