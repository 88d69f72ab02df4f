package handlers

import (
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

func sseRequest(path, signals string) *http.Request {
	target := path
	if signals != "" {
		target += "?datastar=" + url.QueryEscape(signals)
	}
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics(t)
	logger := testLogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleControl(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())
	charts := []string{"profit_country", "cost_device", "cost_profit", "cost_time"}

	tests := []struct {
		control string
		signals string
		want    []string
	}{
		{control: "filter_device", signals: `{"device":"Mobile"}`, want: []string{"profit_country"}},
		{control: "filter_category", signals: `{"category":"Books"}`, want: []string{"cost_device"}},
		{control: "filter_countries", signals: `{"countries":["Spain"]}`, want: []string{"cost_profit"}},
		{control: "filter_date", signals: `{"dateIndex":2}`, want: []string{"cost_time"}},
		{control: "filter_period", signals: `{"period":"Month"}`, want: []string{"cost_time"}},
	}

	for _, tt := range tests {
		t.Run(tt.control, func(t *testing.T) {
			req := sseRequest("/sse/controls/"+tt.control, tt.signals)
			req.SetPathValue("control", tt.control)
			w := httptest.NewRecorder()

			handlers.HandleControl(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
				t.Errorf("expected text/event-stream, got %q", ct)
			}

			body := w.Body.String()
			for _, chart := range charts {
				patched := strings.Contains(body, `id="chart-`+chart+`"`)
				wanted := false
				for _, id := range tt.want {
					wanted = wanted || id == chart
				}
				if patched != wanted {
					t.Errorf("chart %s patched = %v, want %v", chart, patched, wanted)
				}
			}
		})
	}
}

func TestSSEHandlers_HandleControl_Errors(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	tests := []struct {
		name     string
		control  string
		signals  string
		wantCode int
	}{
		{name: "unknown control", control: "filter_region", wantCode: http.StatusNotFound},
		{name: "unknown period", control: "filter_period", signals: `{"period":"weekly"}`, wantCode: http.StatusBadRequest},
		{name: "malformed signals", control: "filter_device", signals: `{"device":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sseRequest("/sse/controls/"+tt.control, tt.signals)
			req.SetPathValue("control", tt.control)
			w := httptest.NewRecorder()

			handlers.HandleControl(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("errors should be reported as JSON, got %q", ct)
			}
		})
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	req := sseRequest("/sse/refresh-all", `{"device":"All","category":"All","countries":["All"],"dateIndex":5,"period":"All","page":1}`)
	w := httptest.NewRecorder()

	handlers.HandleRefreshAll(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	expected := []string{
		`id="chart-profit_country"`,
		`id="chart-cost_device"`,
		`id="chart-cost_profit"`,
		`id="chart-cost_time"`,
		`id="records-table"`,
		"Página 1 de 2",
	}
	for _, content := range expected {
		if !strings.Contains(body, content) {
			t.Errorf("refresh should contain %q", content)
		}
	}
}

func TestSSEHandlers_HandleRecords(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testLogger())

	tests := []struct {
		name    string
		signals string
		want    string
	}{
		{name: "no signals", signals: "", want: "Página 1 de 2"},
		{name: "second page", signals: `{"page":2}`, want: "Página 2 de 2"},
		{name: "past the end is clamped", signals: `{"page":40}`, want: "Página 2 de 2"},
		{name: "before the start is clamped", signals: `{"page":-3}`, want: "Página 1 de 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.HandleRecords(w, sseRequest("/sse/records", tt.signals))

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("records patch should contain %q", tt.want)
			}
			if !strings.Contains(body, `"page"`) {
				t.Error("records patch should sync the page signal")
			}
		})
	}
}

var signalsAttr = regexp.MustCompile(`data-signals="([^"]*)"`)

// pageSignals renders the dashboard and returns the signal store the browser
// would send back on its first request.
func pageSignals(t *testing.T, page *PageHandlers) string {
	t.Helper()
	w := httptest.NewRecorder()
	page.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/", nil))

	m := signalsAttr.FindStringSubmatch(w.Body.String())
	if m == nil {
		t.Fatal("dashboard has no data-signals attribute")
	}
	return html.UnescapeString(m[1])
}

func TestSSEHandlers_HandleRefreshAll_InitialSignals(t *testing.T) {
	for _, emptyMeansAll := range []bool{true, false} {
		analytics := createTestAnalyticsWithPolicy(t, emptyMeansAll)
		signals := pageSignals(t, NewPageHandlers(analytics, testLogger()))

		w := httptest.NewRecorder()
		NewSSEHandlers(analytics, testLogger()).HandleRefreshAll(w, sseRequest("/sse/refresh-all", signals))

		if w.Code != http.StatusOK {
			t.Fatalf("emptyMeansAll=%v: status = %d, want %d", emptyMeansAll, w.Code, http.StatusOK)
		}
		body := w.Body.String()
		if !strings.Contains(body, `id="chart-cost_profit"`) {
			t.Fatalf("emptyMeansAll=%v: refresh should patch the scatter chart", emptyMeansAll)
		}
		if strings.Contains(body, "Sin datos") {
			t.Errorf("emptyMeansAll=%v: untouched controls should not blank any chart", emptyMeansAll)
		}
	}
}

func TestSSEHandlers_HandleControl_EmptyCountries(t *testing.T) {
	tests := []struct {
		name          string
		emptyMeansAll bool
		wantBlank     bool
	}{
		{name: "empty means all", emptyMeansAll: true, wantBlank: false},
		{name: "empty means none", emptyMeansAll: false, wantBlank: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewSSEHandlers(createTestAnalyticsWithPolicy(t, tt.emptyMeansAll), testLogger())
			req := sseRequest("/sse/controls/filter_countries", `{"countries":[]}`)
			req.SetPathValue("control", "filter_countries")
			w := httptest.NewRecorder()

			handlers.HandleControl(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			if blank := strings.Contains(w.Body.String(), "Sin datos"); blank != tt.wantBlank {
				t.Errorf("scatter blank = %v, want %v", blank, tt.wantBlank)
			}
		})
	}
}
