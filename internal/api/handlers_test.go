package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/service/auditlog"
	"github.com/flipdev/customer-cleanup/internal/service/cleanup"
	"github.com/flipdev/customer-cleanup/internal/service/eligibility"
)

type mockScanner struct {
	results []domain.EligibilityResult
	err     error
}

func (m *mockScanner) CachedEligibleCustomers(_ context.Context) ([]domain.EligibilityResult, error) {
	return m.results, m.err
}

func (m *mockScanner) IsEligible(_ context.Context, customerID int64) (*domain.EligibilityResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.results {
		if m.results[i].CustomerID == customerID {
			return &m.results[i], nil
		}
	}
	return nil, eligibility.ErrNotEligible
}

type mockExecutor struct {
	result   *cleanup.BatchResult
	err      error
	lastIDs  []int64
	lastDays int
}

func (m *mockExecutor) ProcessBatch(_ context.Context, ids []int64, _, _ string) (*cleanup.BatchResult, error) {
	m.lastIDs = ids
	return m.result, m.err
}

func (m *mockExecutor) NotifyBatch(_ context.Context, ids []int64, days int) (*cleanup.BatchResult, error) {
	m.lastIDs = ids
	m.lastDays = days
	return m.result, m.err
}

type mockLogReader struct {
	entries    []domain.CleanupLogEntry
	counts     map[domain.ActionType]int64
	lastFilter auditlog.Filter
}

func (m *mockLogReader) List(_ context.Context, f auditlog.Filter) ([]domain.CleanupLogEntry, error) {
	m.lastFilter = f
	return m.entries, nil
}

func (m *mockLogReader) CountByAction(_ context.Context) (map[domain.ActionType]int64, error) {
	return m.counts, nil
}

type stubConfig struct{ snap config.CleanupSnapshot }

func (s stubConfig) Cleanup() config.CleanupSnapshot { return s.snap }

func newTestRouter(scanner *mockScanner, executor *mockExecutor, logs *mockLogReader, snap config.CleanupSnapshot) http.Handler {
	h := NewHandlers(scanner, executor, logs, stubConfig{snap})
	return SetupRoutes(h, nil)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestEligibleCustomersEndpoint(t *testing.T) {
	scanner := &mockScanner{results: []domain.EligibilityResult{
		{CustomerID: 1, Reason: "No orders since registration 365 days ago"},
	}}
	router := newTestRouter(scanner, &mockExecutor{}, &mockLogReader{}, config.CleanupSnapshot{Enabled: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cleanup/eligible", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestCheckCustomerEndpoint(t *testing.T) {
	scanner := &mockScanner{results: []domain.EligibilityResult{
		{CustomerID: 7, Reason: "No login for 180 days (last login: 2026-01-01 00:00:00)"},
	}}
	router := newTestRouter(scanner, &mockExecutor{}, &mockLogReader{}, config.CleanupSnapshot{Enabled: true})

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantEligible interface{}
	}{
		{"eligible", "/api/cleanup/eligible/7", http.StatusOK, true},
		{"not eligible", "/api/cleanup/eligible/8", http.StatusOK, false},
		{"bad id", "/api/cleanup/eligible/abc", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantEligible != nil {
				body := decodeBody(t, rec)
				if body["eligible"] != tt.wantEligible {
					t.Errorf("eligible = %v, want %v", body["eligible"], tt.wantEligible)
				}
			}
		})
	}
}

func TestCleanupCustomersEndpoint(t *testing.T) {
	executor := &mockExecutor{result: &cleanup.BatchResult{RunID: "r1", Processed: 2}}
	router := newTestRouter(&mockScanner{}, executor, &mockLogReader{}, config.CleanupSnapshot{Enabled: true})

	payload, _ := json.Marshal(map[string]interface{}{
		"customer_ids": []int64{1, 2},
		"admin_user":   "admin",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cleanup/customers", bytes.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(executor.lastIDs) != 2 {
		t.Errorf("executor got ids %v", executor.lastIDs)
	}
}

func TestCleanupCustomersRejectsEmptyBody(t *testing.T) {
	router := newTestRouter(&mockScanner{}, &mockExecutor{}, &mockLogReader{}, config.CleanupSnapshot{Enabled: true})

	payload := []byte(`{"customer_ids": []}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cleanup/customers", bytes.NewReader(payload)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCleanupCustomersDisabledModule(t *testing.T) {
	executor := &mockExecutor{err: cleanup.ErrModuleDisabled}
	router := newTestRouter(&mockScanner{}, executor, &mockLogReader{}, config.CleanupSnapshot{})

	payload := []byte(`{"customer_ids": [1]}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cleanup/customers", bytes.NewReader(payload)))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestNotifyCustomersDefaultsWarningDays(t *testing.T) {
	executor := &mockExecutor{result: &cleanup.BatchResult{RunID: "r1"}}
	router := newTestRouter(&mockScanner{}, executor, &mockLogReader{},
		config.CleanupSnapshot{Enabled: true, WarningDays: 30})

	payload := []byte(`{"customer_ids": [1]}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cleanup/notify", bytes.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if executor.lastDays != 30 {
		t.Errorf("days = %d, want configured default 30", executor.lastDays)
	}
}

func TestCleanupLogFilters(t *testing.T) {
	logs := &mockLogReader{}
	router := newTestRouter(&mockScanner{}, &mockExecutor{}, logs, config.CleanupSnapshot{Enabled: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/cleanup/log?customer_id=7&action=deleted&limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if logs.lastFilter.CustomerID != 7 || logs.lastFilter.Action != domain.ActionDeleted || logs.lastFilter.Limit != 10 {
		t.Errorf("filter = %+v", logs.lastFilter)
	}
}

func TestCleanupLogRejectsUnknownAction(t *testing.T) {
	router := newTestRouter(&mockScanner{}, &mockExecutor{}, &mockLogReader{}, config.CleanupSnapshot{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cleanup/log?action=shredded", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	logs := &mockLogReader{counts: map[domain.ActionType]int64{domain.ActionDeleted: 5}}
	router := newTestRouter(&mockScanner{}, &mockExecutor{}, logs,
		config.CleanupSnapshot{Enabled: true, DryRun: true, InactiveDays: 180})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cleanup/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["dry_run"] != true || body["inactive_days"].(float64) != 180 {
		t.Errorf("body = %v", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&mockScanner{}, &mockExecutor{}, &mockLogReader{}, config.CleanupSnapshot{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
