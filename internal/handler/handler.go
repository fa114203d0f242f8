// Package handler exposes the configurator, shop, quote and fleet operations
// over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/robobuild/internal/domain/auth"
	"github.com/xenking/robobuild/internal/domain/build"
	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/inquiry"
	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/domain/quote"
)

// QuoteService accepts build submissions.
type QuoteService interface {
	Submit(ctx context.Context, req quote.SubmitRequest) (*quote.Quote, error)
	Get(ctx context.Context, id string) (*quote.Quote, error)
}

// InquiryService accepts service requests and contact messages.
type InquiryService interface {
	SubmitServiceRequest(ctx context.Context, in inquiry.ServiceRequestInput) (*inquiry.ServiceRequest, error)
	SubmitContact(ctx context.Context, in inquiry.ContactInput) (*inquiry.ContactMessage, error)
}

// Fleet is the device dashboard backend.
type Fleet interface {
	device.ControlService
	List() []device.Device
	Stats() device.Stats
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative product image paths.
	ImageBaseURL string
	// MeterProvider defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// Handler serves the /api routes.
type Handler struct {
	builds       *build.Store
	products     product.Repository
	quotes       QuoteService
	inquiries    InquiryService
	fleet        Fleet
	keys         auth.Service
	imageBaseURL string
	metrics      *metrics
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	builds *build.Store,
	products product.Repository,
	quotes QuoteService,
	inquiries InquiryService,
	fleet Fleet,
	keys auth.Service,
) (*Handler, error) {
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m, err := newMetrics(mp)
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	return &Handler{
		builds:       builds,
		products:     products,
		quotes:       quotes,
		inquiries:    inquiries,
		fleet:        fleet,
		keys:         keys,
		imageBaseURL: cfg.ImageBaseURL,
		metrics:      m,
	}, nil
}

// SessionsExpired records sessions removed by the idle sweeper.
func (h *Handler) SessionsExpired(ctx context.Context, n int) {
	h.metrics.sessions.Add(ctx, -int64(n))
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/parts", h.handle(h.searchParts))

	mux.Handle("POST /api/builds", h.handle(h.createBuild))
	mux.Handle("GET /api/builds/{id}", h.handle(h.getBuild))
	mux.Handle("DELETE /api/builds/{id}", h.handle(h.deleteBuild))
	mux.Handle("POST /api/builds/{id}/parts", h.handle(h.addPart))
	mux.Handle("DELETE /api/builds/{id}/parts/{partId}", h.handle(h.removePart))
	mux.Handle("PUT /api/builds/{id}/parts/{partId}", h.handle(h.setQuantity))
	mux.Handle("POST /api/builds/{id}/quote", h.handle(h.submitBuild))

	mux.Handle("GET /api/quotes/{id}", h.handle(h.getQuote))

	mux.Handle("GET /api/products", h.handle(h.listProducts))
	mux.Handle("GET /api/products/{id}", h.handle(h.getProduct))

	mux.Handle("POST /api/service-requests", h.handle(h.submitServiceRequest))
	mux.Handle("POST /api/contact", h.handle(h.submitContact))

	mux.Handle("GET /api/devices", h.handle(h.listDevices))
	mux.Handle("POST /api/devices/{id}/actions",
		h.requireScope(auth.ScopeDeviceControl, h.handle(h.controlDevice)))
}
