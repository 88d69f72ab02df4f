package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tienda-dashboard/internal/config"
	"tienda-dashboard/internal/dataset"
	"tienda-dashboard/internal/middleware"
	"tienda-dashboard/internal/services"
)

const ordersCSV = `order_id,order_value_EUR,cost,date,device_type,category,country
1,"1,250.50",1000.25,01/15/2023,PC,Electronics,Spain
2,99.99,45.5,01/15/2023,Mobile,Books,France
3,"12,000.00",9500,03/02/2023,Tablet,Electronics,Germany
4,15.25,20.75,02/28/2024,Mobile,Toys,Spain
`

func testConfig(source string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8050,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Data: config.DataConfig{Source: source, FetchTimeout: 5 * time.Second},
		Dashboard: config.DashboardConfig{
			PageSize:       config.MinPageSize,
			EmptySelection: config.EmptySelectionAll,
			Locale:         "es",
		},
		Logger: config.LoggerConfig{Level: "error", Format: "text"},
		Security: config.SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8050"},
		},
	}
}

// newTestHandler loads the CSV from disk the same way main does and returns
// the fully wrapped handler.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return newTestHandlerFor(t, ordersCSV)
}

func newTestHandlerFor(t *testing.T, csv string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(path)

	ds, err := dataset.NewLoader(cfg.Data, logger).Load(context.Background(), cfg.Data.Source)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	analytics, err := services.NewAnalytics(ds, services.Options{
		PageSize:               cfg.Dashboard.PageSize,
		Locale:                 cfg.Dashboard.Locale,
		EmptySelectionMeansAll: cfg.Dashboard.EmptySelectionMeansAll(),
	}, logger)
	if err != nil {
		t.Fatalf("NewAnalytics() error = %v", err)
	}

	handler, err := newHandler(cfg, analytics, middleware.NewRateLimiter(cfg.Security), logger)
	if err != nil {
		t.Fatalf("newHandler() error = %v", err)
	}
	return handler
}

func TestHandler_Routes(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/charts/profit_country", http.StatusOK, "application/json"},
		{"/api/charts/cost_time?period=Year", http.StatusOK, "application/json"},
		{"/api/records?page=1", http.StatusOK, "application/json"},
		{"/charts/cost_profit", http.StatusOK, "image/svg+xml"},
		{"/sse/refresh-all", http.StatusOK, "text/event-stream"},
		{"/api/charts/unknown", http.StatusNotFound, "application/json"},
		{"/api/charts/cost_time?period=decade", http.StatusBadRequest, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("every response should carry a request id")
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers should be set")
			}
		})
	}
}

func TestHandler_ChartFromLoadedCSV(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/charts/profit_country", nil))

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Points []struct {
				Label string  `json:"label"`
				Y     float64 `json:"y"`
			} `json:"points"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if !response.Success {
		t.Fatal("expected success=true in response")
	}

	want := map[string]float64{"France": 54.49, "Germany": 2500, "Spain": 244.75}
	if len(response.Data.Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(response.Data.Points), len(want))
	}
	for _, p := range response.Data.Points {
		if diff := p.Y - want[p.Label]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("profit[%s] = %v, want %v", p.Label, p.Y, want[p.Label])
		}
	}
}

func TestHandler_ControlPatchesOnlyBoundChart(t *testing.T) {
	handler := newTestHandler(t)

	signals := url.QueryEscape(`{"device":"All","category":"Electronics","countries":["All"],"dateIndex":2,"period":"All","page":1}`)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/sse/controls/filter_category?datastar="+signals, nil)

	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="chart-cost_device"`) {
		t.Error("category change should patch the device chart")
	}
	for _, other := range []string{"profit_country", "cost_profit", "cost_time"} {
		if strings.Contains(body, `id="chart-`+other+`"`) {
			t.Errorf("category change should not patch %s", other)
		}
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/records"},
		{http.MethodPut, "/"},
		{http.MethodDelete, "/health"},
		{http.MethodPatch, "/sse/refresh-all"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestHandler_ChartSVGEscapesCSVText(t *testing.T) {
	csv := ordersCSV + `5,80,20,03/05/2024,PC,Garden & Home,Trinidad & Tobago
6,90,10,03/06/2024,PC,Books,<script>alert(1)</script>
`
	handler := newTestHandlerFor(t, csv)

	for _, chart := range []string{"profit_country", "cost_device", "cost_profit", "cost_time"} {
		t.Run(chart, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/charts/"+chart, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			body := w.Body.String()
			if strings.Contains(body, "<script>") {
				t.Error("country name reached the SVG unescaped")
			}
			dec := xml.NewDecoder(strings.NewReader(body))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("chart is not well-formed XML: %v", err)
				}
			}
		})
	}
}
