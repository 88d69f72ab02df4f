package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPageHandlers_HandleDashboard(t *testing.T) {
	handlers := NewPageHandlers(createTestAnalytics(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}

	body := w.Body.String()
	expected := []string{
		"<title>TiendaEUR Informes</title>",
		`max="5"`,
		"2023-01-15",
		"2024-11-30",
		`<option value="Toys">Toys</option>`,
		`<option value="Italy">Italy</option>`,
		`<div id="chart-profit_country" class="chart"><svg`,
		`<div id="chart-cost_time" class="chart"><svg`,
		"Página 1 de 2",
	}
	for _, content := range expected {
		if !strings.Contains(body, content) {
			t.Errorf("dashboard should contain %q", content)
		}
	}
}
