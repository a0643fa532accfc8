package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"courier/internal/server/respond"
)

type OrderHandlers interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	ListOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	MatchWithTraveler(w http.ResponseWriter, r *http.Request)
	AssignToPartner(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	ConfirmDelivery(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	CreateDeliveryRequest(w http.ResponseWriter, r *http.Request)
}

type PartnerHandlers interface {
	SearchNearby(w http.ResponseWriter, r *http.Request)
	UpdateAvailability(w http.ResponseWriter, r *http.Request)
	QuoteFee(w http.ResponseWriter, r *http.Request)
}

type TransactionHandlers interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Invoice(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

func NewRouter(orders OrderHandlers, partners PartnerHandlers, transactions TransactionHandlers, requestTimeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, r, http.StatusNotFound, "", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, r, http.StatusMethodNotAllowed, "", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, "", map[string]string{"service": "courier"})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.CreateOrder)
		r.Get("/", orders.ListOrders)
		r.Post("/request", orders.CreateDeliveryRequest)
		r.Post("/match/traveler", orders.MatchWithTraveler)
		r.Post("/assign/partner", orders.AssignToPartner)
		r.Get("/{orderId}", orders.GetOrder)
		r.Put("/{orderId}/status", orders.UpdateStatus)
		r.Post("/{orderId}/confirm", orders.ConfirmDelivery)
		r.Post("/{orderId}/cancel", orders.Cancel)
	})

	r.Route("/partners", func(r chi.Router) {
		r.Get("/search/nearby", partners.SearchNearby)
		r.Get("/fee-quote", partners.QuoteFee)
		r.Put("/{partnerId}/availability", partners.UpdateAvailability)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", transactions.Create)
		r.Get("/stats", transactions.Stats)
		r.Get("/{id}", transactions.Get)
		r.Put("/{id}", transactions.Update)
		r.Get("/{id}/invoice", transactions.Invoice)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
