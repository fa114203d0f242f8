package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/xenking/robobuild/db"
	"github.com/xenking/robobuild/internal/domain/auth"
	"github.com/xenking/robobuild/internal/domain/build"
	"github.com/xenking/robobuild/internal/domain/device"
	"github.com/xenking/robobuild/internal/domain/inquiry"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/domain/quote"
	"github.com/xenking/robobuild/internal/seed"
	"github.com/xenking/robobuild/internal/storage/memory"
)

const (
	testPepper  = "test-pepper"
	controlKey  = "control-key"
	readOnlyKey = "read-only-key"
)

type mockProductRepo struct {
	err error
}

func (m *mockProductRepo) List(context.Context) ([]product.Product, error) {
	return nil, m.err
}

func (m *mockProductRepo) GetByID(context.Context, int) (*product.Product, error) {
	return nil, m.err
}

type staticKeys map[string]*auth.APIKeyInfo

func (s staticKeys) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := s[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return info, nil
}

type buildResponse struct {
	ID    string `json:"id"`
	Parts []struct {
		PartID    int    `json:"partId"`
		Name      string `json:"name"`
		Price     string `json:"price"`
		Quantity  int    `json:"quantity"`
		LineTotal string `json:"lineTotal"`
	} `json:"parts"`
	Total  string `json:"total"`
	Notice *struct {
		Kind    string `json:"kind"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"notice"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	t         *testing.T
	h         *Handler
	mux       *http.ServeMux
	inquiries *memory.InquiryRepository
}

type testOptions struct {
	products    product.Repository
	maxSessions int
	meters      metric.MeterProvider
}

func newTestServer(t *testing.T, products product.Repository) *testServer {
	t.Helper()
	return newTestServerWith(t, testOptions{products: products})
}

func newTestServerWith(t *testing.T, opts testOptions) *testServer {
	t.Helper()
	products := opts.products

	catalog, err := part.Load(context.Background(), memory.NewCatalogSource())
	require.NoError(t, err)

	if products == nil {
		products, err = memory.NewProductRepository()
		require.NoError(t, err)
	}

	devices, err := seed.Devices(db.Devices)
	require.NoError(t, err)

	pepper := []byte(testPepper)
	keys := staticKeys{
		auth.HashKey(pepper, controlKey): {
			ID: "ops", KeyHash: auth.HashKey(pepper, controlKey), Scopes: []string{auth.ScopeDeviceControl},
		},
		auth.HashKey(pepper, readOnlyKey): {
			ID: "viewer", KeyHash: auth.HashKey(pepper, readOnlyKey),
		},
	}

	fleet := device.NewFleet(devices)
	inquiries := memory.NewInquiryRepository()
	h, err := NewHandler(
		HandlerConfig{ImageBaseURL: "https://cdn.example.com/img", MeterProvider: opts.meters},
		build.NewStore(catalog, time.Hour, opts.maxSessions),
		products,
		quote.NewService(memory.NewQuoteRepository()),
		inquiry.NewService(inquiries, fleet),
		fleet,
		auth.NewAuthenticator(keys, pepper),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	return &testServer{t: t, h: h, mux: mux, inquiries: inquiries}
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) newBuild() string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/builds", "")
	require.Equal(s.t, http.StatusCreated, w.Code)
	b := decode[buildResponse](s.t, w)
	require.NotEmpty(s.t, b.ID)
	assert.Equal(s.t, "/api/builds/"+b.ID, w.Header().Get("Location"))
	assert.Equal(s.t, "0.00", b.Total)
	return b.ID
}

func TestSearchParts(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name      string
		query     string
		wantCats  []string
		wantParts int
	}{
		{name: "empty term returns catalog", query: "", wantCats: []string{"processors", "power", "sensors", "actuators"}, wantParts: 12},
		{name: "case insensitive", query: "CORE", wantCats: []string{"processors"}, wantParts: 2},
		{name: "no match", query: "zzz", wantCats: []string{}, wantParts: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/parts?q="+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			cats := decode[[]struct {
				ID    string            `json:"id"`
				Parts []json.RawMessage `json:"parts"`
			}](t, w)

			ids := []string{}
			parts := 0
			for _, c := range cats {
				ids = append(ids, c.ID)
				parts += len(c.Parts)
			}
			assert.Equal(t, tt.wantCats, ids)
			assert.Equal(t, tt.wantParts, parts)
		})
	}
}

func TestBuild_Scenario(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.newBuild()
	base := "/api/builds/" + id

	w := s.do(http.MethodPost, base+"/parts", `{"partId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	b := decode[buildResponse](t, w)
	assert.Equal(t, "899.00", b.Total)
	require.NotNil(t, b.Notice)
	assert.Equal(t, "success", b.Notice.Kind)
	assert.Equal(t, "Added RoboCore AI Processor X1 to your build", b.Notice.Message)

	b = decode[buildResponse](t, s.do(http.MethodPost, base+"/parts", `{"partId":4}`))
	assert.Equal(t, "1198.00", b.Total)

	b = decode[buildResponse](t, s.do(http.MethodPut, base+"/parts/1", `{"quantity":2}`))
	assert.Equal(t, "2097.00", b.Total)

	b = decode[buildResponse](t, s.do(http.MethodDelete, base+"/parts/4", ""))
	assert.Equal(t, "1798.00", b.Total)
	require.NotNil(t, b.Notice)
	assert.Equal(t, "Part removed from build", b.Notice.Message)

	w = s.do(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	b = decode[buildResponse](t, w)
	require.Len(t, b.Parts, 1)
	assert.Equal(t, 1, b.Parts[0].PartID)
	assert.Equal(t, 2, b.Parts[0].Quantity)
	assert.Equal(t, "1798.00", b.Parts[0].LineTotal)
	assert.Nil(t, b.Notice)
}

func TestBuild_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		setup      string
		method     string
		path       string
		body       string
		wantReason string
		wantTotal  string
	}{
		{name: "out of stock", method: http.MethodPost, path: "/parts", body: `{"partId":3}`, wantReason: "out_of_stock", wantTotal: "0.00"},
		{name: "duplicate", setup: `{"partId":1}`, method: http.MethodPost, path: "/parts", body: `{"partId":1}`, wantReason: "duplicate_selection", wantTotal: "899.00"},
		{name: "zero quantity", setup: `{"partId":1}`, method: http.MethodPut, path: "/parts/1", body: `{"quantity":0}`, wantReason: "invalid_quantity", wantTotal: "899.00"},
		{name: "negative quantity", setup: `{"partId":1}`, method: http.MethodPut, path: "/parts/1", body: `{"quantity":-1}`, wantReason: "invalid_quantity", wantTotal: "899.00"},
		{name: "quantity of unselected part", method: http.MethodPut, path: "/parts/2", body: `{"quantity":2}`, wantReason: "not_selected", wantTotal: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			base := "/api/builds/" + s.newBuild()
			if tt.setup != "" {
				require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/parts", tt.setup).Code)
			}

			w := s.do(tt.method, base+tt.path, tt.body)
			require.Equal(t, http.StatusOK, w.Code)
			b := decode[buildResponse](t, w)
			require.NotNil(t, b.Notice)
			assert.Equal(t, "rejected", b.Notice.Kind)
			assert.Equal(t, tt.wantReason, b.Notice.Reason)
			assert.Equal(t, tt.wantTotal, b.Total)
		})
	}
}

func TestBuild_RemoveAbsentIsSilent(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/api/builds/" + s.newBuild()

	w := s.do(http.MethodDelete, base+"/parts/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	b := decode[buildResponse](t, w)
	assert.Nil(t, b.Notice)
	assert.Equal(t, "0.00", b.Total)
}

func TestBuild_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/api/builds/" + s.newBuild()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{name: "unknown session", method: http.MethodGet, path: "/api/builds/nope", wantCode: http.StatusNotFound},
		{name: "add to unknown session", method: http.MethodPost, path: "/api/builds/nope/parts", body: `{"partId":1}`, wantCode: http.StatusNotFound},
		{name: "unknown part", method: http.MethodPost, path: base + "/parts", body: `{"partId":999}`, wantCode: http.StatusNotFound},
		{name: "missing part id", method: http.MethodPost, path: base + "/parts", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: base + "/parts", body: `{"partId":`, wantCode: http.StatusBadRequest},
		{name: "non numeric part in path", method: http.MethodDelete, path: base + "/parts/abc", wantCode: http.StatusBadRequest},
		{name: "missing quantity", method: http.MethodPut, path: base + "/parts/1", body: `{"qty":1}`, wantCode: http.StatusBadRequest},
		{name: "delete unknown session", method: http.MethodDelete, path: "/api/builds/nope", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			e := decode[errorResponse](t, w)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestBuild_Delete(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/api/builds/" + s.newBuild()

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, base, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, base, "").Code)
}

func TestBuild_SessionsIsolated(t *testing.T) {
	s := newTestServer(t, nil)
	a := "/api/builds/" + s.newBuild()
	b := "/api/builds/" + s.newBuild()

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, a+"/parts", `{"partId":8}`).Code)

	got := decode[buildResponse](t, s.do(http.MethodGet, b, ""))
	assert.Empty(t, got.Parts)
	assert.Equal(t, "0.00", got.Total)
}

func TestSubmitBuild(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/api/builds/" + s.newBuild()
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/parts", `{"partId":5}`).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/parts/5", `{"quantity":3}`).Code)

	type quoteResponse struct {
		ID    string `json:"id"`
		Kind  string `json:"kind"`
		Total string `json:"total"`
		Lines []struct {
			PartID    int    `json:"partId"`
			UnitPrice string `json:"unitPrice"`
			Quantity  int    `json:"quantity"`
			LineTotal string `json:"lineTotal"`
		} `json:"lines"`
		Contact struct {
			Email string `json:"email"`
		} `json:"contact"`
	}

	w := s.do(http.MethodPost, base+"/quote", `{"kind":"quote","contact":{"name":"Ada","email":"ada@example.com"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decode[quoteResponse](t, w)
	assert.Equal(t, "quote", q.Kind)
	assert.Equal(t, "1497.00", q.Total)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, "499.00", q.Lines[0].UnitPrice)
	assert.Equal(t, "1497.00", q.Lines[0].LineTotal)

	w = s.do(http.MethodGet, "/api/quotes/"+q.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, q.ID, decode[quoteResponse](t, w).ID)

	// Submitting does not clear the selection.
	assert.Equal(t, "1497.00", decode[buildResponse](t, s.do(http.MethodGet, base, "")).Total)

	w = s.do(http.MethodPost, base+"/quote", `{"kind":"saved"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "saved", decode[quoteResponse](t, w).Kind)
}

func TestSubmitBuild_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	empty := "/api/builds/" + s.newBuild()
	filled := "/api/builds/" + s.newBuild()
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, filled+"/parts", `{"partId":1}`).Code)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{name: "empty build", path: empty + "/quote", body: `{"kind":"saved"}`, wantCode: http.StatusBadRequest},
		{name: "quote without email", path: filled + "/quote", body: `{"kind":"quote"}`, wantCode: http.StatusBadRequest},
		{name: "invalid email", path: filled + "/quote", body: `{"contact":{"email":"nope"}}`, wantCode: http.StatusBadRequest},
		{name: "invalid kind", path: filled + "/quote", body: `{"kind":"order"}`, wantCode: http.StatusBadRequest},
		{name: "unknown session", path: "/api/builds/nope/quote", body: `{"kind":"saved"}`, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, s.do(http.MethodPost, tt.path, tt.body).Code)
		})
	}

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/quotes/missing", "").Code)
}

func TestProducts(t *testing.T) {
	s := newTestServer(t, nil)

	type listResponse struct {
		Categories []struct {
			ID string `json:"id"`
		} `json:"categories"`
		Products []struct {
			ID       int    `json:"id"`
			Category string `json:"category"`
			Image    string `json:"image"`
		} `json:"products"`
	}

	all := decode[listResponse](t, s.do(http.MethodGet, "/api/products", ""))
	assert.Len(t, all.Categories, 5)
	assert.Len(t, all.Products, 6)
	assert.True(t, strings.HasPrefix(all.Products[0].Image, "https://cdn.example.com/img/"), all.Products[0].Image)

	security := decode[listResponse](t, s.do(http.MethodGet, "/api/products?category=security", ""))
	require.Len(t, security.Products, 2)
	for _, p := range security.Products {
		assert.Equal(t, "security", p.Category)
	}

	assert.Empty(t, decode[listResponse](t, s.do(http.MethodGet, "/api/products?category=toys", "")).Products)

	w := s.do(http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Name          string   `json:"name"`
		OriginalPrice string   `json:"originalPrice"`
		Features      []string `json:"features"`
		Specs         []struct {
			Name string `json:"name"`
		} `json:"specs"`
	}](t, w)
	assert.Equal(t, "Guardian Security Bot X1", detail.Name)
	assert.Equal(t, "3499.00", detail.OriginalPrice)
	assert.NotEmpty(t, detail.Features)
	assert.NotEmpty(t, detail.Specs)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/404", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/products/abc", "").Code)
}

func TestProducts_RepoError(t *testing.T) {
	s := newTestServer(t, &mockProductRepo{err: errors.New("db down")})

	w := s.do(http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal server error"}`, w.Body.String())
}

func TestDevices(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/devices", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Stats struct {
			Total       int `json:"total"`
			Active      int `json:"active"`
			Online      int `json:"online"`
			Maintenance int `json:"maintenance"`
		} `json:"stats"`
		Devices []json.RawMessage `json:"devices"`
	}](t, w)
	assert.Equal(t, 3, list.Stats.Total)
	assert.Equal(t, 1, list.Stats.Active)
	assert.Equal(t, 2, list.Stats.Online)
	assert.Equal(t, 1, list.Stats.Maintenance)
	assert.Len(t, list.Devices, 3)
}

func TestControlDevice(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		headers    []string
		wantCode   int
		wantStatus string
	}{
		{name: "no key", path: "/api/devices/1/actions", body: `{"action":"pause"}`, wantCode: http.StatusUnauthorized},
		{name: "wrong key", path: "/api/devices/1/actions", body: `{"action":"pause"}`, headers: []string{HeaderAPIKey, "nope"}, wantCode: http.StatusUnauthorized},
		{name: "missing scope", path: "/api/devices/1/actions", body: `{"action":"pause"}`, headers: []string{HeaderAPIKey, readOnlyKey}, wantCode: http.StatusForbidden},
		{name: "pause active", path: "/api/devices/1/actions", body: `{"action":"pause"}`, headers: []string{HeaderAPIKey, controlKey}, wantCode: http.StatusOK, wantStatus: "idle"},
		{name: "bearer token", path: "/api/devices/2/actions", body: `{"action":"start"}`, headers: []string{"Authorization", "Bearer " + controlKey}, wantCode: http.StatusOK, wantStatus: "active"},
		{name: "start in maintenance", path: "/api/devices/3/actions", body: `{"action":"start"}`, headers: []string{HeaderAPIKey, controlKey}, wantCode: http.StatusConflict},
		{name: "unknown action", path: "/api/devices/1/actions", body: `{"action":"explode"}`, headers: []string{HeaderAPIKey, controlKey}, wantCode: http.StatusBadRequest},
		{name: "unknown device", path: "/api/devices/99/actions", body: `{"action":"reset"}`, headers: []string{HeaderAPIKey, controlKey}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			w := s.do(http.MethodPost, tt.path, tt.body, tt.headers...)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantStatus != "" {
				d := decode[struct {
					Status string `json:"status"`
				}](t, w)
				assert.Equal(t, tt.wantStatus, d.Status)
			}
		})
	}
}

func TestBuild_SessionLimit(t *testing.T) {
	s := newTestServerWith(t, testOptions{maxSessions: 2})
	first := s.newBuild()
	s.newBuild()

	w := s.do(http.MethodPost, "/api/builds", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	e := decode[errorResponse](t, w)
	assert.Equal(t, http.StatusServiceUnavailable, e.Code)
	assert.Equal(t, build.ErrTooManySessions.Error(), e.Message)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/builds/"+first, "").Code)
	s.newBuild()
}

func sessionCount(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "robobuild.configurator.sessions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "unexpected data type %T", m.Data)
			require.Len(t, sum.DataPoints, 1)
			return sum.DataPoints[0].Value
		}
	}
	t.Fatal("sessions metric not recorded")
	return 0
}

func TestSessionsMetric_TracksSweeps(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	s := newTestServerWith(t, testOptions{meters: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))})

	first := s.newBuild()
	s.newBuild()
	s.newBuild()
	assert.Equal(t, int64(3), sessionCount(t, reader))

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/builds/"+first, "").Code)
	s.h.SessionsExpired(context.Background(), 2)
	assert.Equal(t, int64(0), sessionCount(t, reader))
}

func TestSubmitBuild_DesignFile(t *testing.T) {
	s := newTestServer(t, nil)
	base := "/api/builds/" + s.newBuild()
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/parts", `{"partId":2}`).Code)

	w := s.do(http.MethodPost, base+"/quote", `{"kind":"saved","designFile":"designs/frame.stl"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decode[struct {
		ID         string `json:"id"`
		DesignFile string `json:"designFile"`
	}](t, w)
	assert.Equal(t, "frame.stl", q.DesignFile)

	w = s.do(http.MethodGet, "/api/quotes/"+q.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"designFile":"frame.stl"`)

	w = s.do(http.MethodPost, base+"/quote", `{"kind":"saved","designFile":"payload.exe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "valid",
			body:     `{"deviceId":1,"issueType":"repair","priority":"high","preferredDate":"2099-01-02","contactMethod":"phone","description":"Camera alignment issues"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "device id as string",
			body:     `{"deviceId":"3","issueType":"calibration","description":"weld drift"}`,
			wantCode: http.StatusCreated,
		},
		{name: "missing device", body: `{"issueType":"repair","description":"x"}`, wantCode: http.StatusBadRequest, wantMsg: "deviceId is required"},
		{name: "unknown device", body: `{"deviceId":42,"issueType":"repair","description":"x"}`, wantCode: http.StatusBadRequest, wantMsg: "deviceId: unknown device"},
		{name: "unknown issue type", body: `{"deviceId":1,"issueType":"software","description":"x"}`, wantCode: http.StatusBadRequest},
		{name: "missing description", body: `{"deviceId":1,"issueType":"repair"}`, wantCode: http.StatusBadRequest, wantMsg: "description: is required"},
		{name: "past date", body: `{"deviceId":1,"issueType":"repair","description":"x","preferredDate":"2000-01-01"}`, wantCode: http.StatusBadRequest},
		{name: "malformed json", body: `{"deviceId":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			w := s.do(http.MethodPost, "/api/service-requests", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())

			if tt.wantCode != http.StatusCreated {
				e := decode[errorResponse](t, w)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, e.Message)
				}
				assert.Empty(t, s.inquiries.ServiceRequests())
				return
			}
			sr := decode[struct {
				ID         string `json:"id"`
				DeviceName string `json:"deviceName"`
				Priority   string `json:"priority"`
			}](t, w)
			assert.NotEmpty(t, sr.ID)
			assert.NotEmpty(t, sr.DeviceName)
			assert.NotEmpty(t, sr.Priority)
			assert.Len(t, s.inquiries.ServiceRequests(), 1)
		})
	}
}

func TestContact(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantTopic string
	}{
		{
			name:      "valid",
			body:      `{"name":"Ada","email":"ada@example.com","company":"AE","subject":"Fleet","inquiryType":"partnership","message":"Let's talk"}`,
			wantCode:  http.StatusCreated,
			wantTopic: "partnership",
		},
		{name: "topic defaults to other", body: `{"name":"Ada","email":"ada@example.com","message":"hi"}`, wantCode: http.StatusCreated, wantTopic: "other"},
		{name: "invalid email", body: `{"name":"Ada","email":"ada","message":"hi"}`, wantCode: http.StatusBadRequest},
		{name: "unknown topic", body: `{"name":"Ada","email":"ada@example.com","inquiryType":"jobs","message":"hi"}`, wantCode: http.StatusBadRequest},
		{name: "empty body", body: "", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			w := s.do(http.MethodPost, "/api/contact", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusCreated {
				return
			}
			m := decode[struct {
				ID          string `json:"id"`
				InquiryType string `json:"inquiryType"`
			}](t, w)
			assert.NotEmpty(t, m.ID)
			assert.Equal(t, tt.wantTopic, m.InquiryType)
		})
	}
}
