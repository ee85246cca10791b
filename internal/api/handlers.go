package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/service/auditlog"
	"github.com/flipdev/customer-cleanup/internal/service/cleanup"
	"github.com/flipdev/customer-cleanup/internal/service/eligibility"
)

// Scanner is the eligibility surface the API consumes.
type Scanner interface {
	CachedEligibleCustomers(ctx context.Context) ([]domain.EligibilityResult, error)
	IsEligible(ctx context.Context, customerID int64) (*domain.EligibilityResult, error)
}

// Executor is the cleanup surface the API consumes.
type Executor interface {
	ProcessBatch(ctx context.Context, customerIDs []int64, reason, adminUser string) (*cleanup.BatchResult, error)
	NotifyBatch(ctx context.Context, customerIDs []int64, daysUntilDeletion int) (*cleanup.BatchResult, error)
}

// LogReader is the audit log surface the API consumes.
type LogReader interface {
	List(ctx context.Context, filter auditlog.Filter) ([]domain.CleanupLogEntry, error)
	CountByAction(ctx context.Context) (map[domain.ActionType]int64, error)
}

// ConfigSource yields the cleanup settings snapshot for the status view.
type ConfigSource interface {
	Cleanup() config.CleanupSnapshot
}

// Handlers holds the HTTP handlers for the admin API.
type Handlers struct {
	scanner  Scanner
	executor Executor
	logs     LogReader
	cfg      ConfigSource
}

func NewHandlers(scanner Scanner, executor Executor, logs LogReader, cfg ConfigSource) *Handlers {
	return &Handlers{scanner: scanner, executor: executor, logs: logs, cfg: cfg}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// EligibleCustomers returns the current eligibility scan.
func (h *Handlers) EligibleCustomers(w http.ResponseWriter, r *http.Request) {
	results, err := h.scanner.CachedEligibleCustomers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "eligibility scan failed")
		return
	}
	if results == nil {
		results = []domain.EligibilityResult{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enabled":   h.cfg.Cleanup().Enabled,
		"count":     len(results),
		"customers": results,
	})
}

// CheckCustomer reports whether a single customer is eligible.
func (h *Handlers) CheckCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	result, err := h.scanner.IsEligible(r.Context(), id)
	if errors.Is(err, eligibility.ErrNotEligible) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"customer_id": id,
			"eligible":    false,
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "eligibility check failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": id,
		"eligible":    true,
		"reason":      result.Reason,
	})
}

type cleanupRequest struct {
	CustomerIDs []int64 `json:"customer_ids"`
	Reason      string  `json:"reason"`
	AdminUser   string  `json:"admin_user"`
}

// CleanupCustomers runs the cleanup over the posted customer ids.
func (h *Handlers) CleanupCustomers(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CustomerIDs) == 0 {
		respondError(w, http.StatusBadRequest, "customer_ids required")
		return
	}
	if req.Reason == "" {
		req.Reason = "Admin mass action"
	}

	result, err := h.executor.ProcessBatch(r.Context(), req.CustomerIDs, req.Reason, req.AdminUser)
	if errors.Is(err, cleanup.ErrModuleDisabled) {
		respondError(w, http.StatusConflict, "cleanup module is disabled")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cleanup batch failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type notifyRequest struct {
	CustomerIDs []int64 `json:"customer_ids"`
	Days        int     `json:"days"`
}

// NotifyCustomers sends the deletion warning to the posted customer ids.
func (h *Handlers) NotifyCustomers(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CustomerIDs) == 0 {
		respondError(w, http.StatusBadRequest, "customer_ids required")
		return
	}
	if req.Days <= 0 {
		req.Days = h.cfg.Cleanup().WarningDays
	}

	result, err := h.executor.NotifyBatch(r.Context(), req.CustomerIDs, req.Days)
	if errors.Is(err, cleanup.ErrModuleDisabled) {
		respondError(w, http.StatusConflict, "cleanup module is disabled")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "notification batch failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CleanupLog lists audit log entries, filtered by query parameters.
func (h *Handlers) CleanupLog(w http.ResponseWriter, r *http.Request) {
	filter, err := logFilterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.logs.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "log query failed")
		return
	}
	if entries == nil {
		entries = []domain.CleanupLogEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// Status returns the module settings and audit counters for the admin
// status banner.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.cfg.Cleanup()

	counts, err := h.logs.CountByAction(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "status query failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enabled":               snap.Enabled,
		"dry_run":               snap.DryRun,
		"inactive_days":         snap.InactiveDays,
		"no_orders_days":        snap.NoOrdersDays,
		"last_order_years":      snap.LastOrderYears,
		"notifications_enabled": snap.NotificationsEnabled,
		"warning_days":          snap.WarningDays,
		"action_counts":         counts,
	})
}

func logFilterFromQuery(r *http.Request) (auditlog.Filter, error) {
	var f auditlog.Filter
	q := r.URL.Query()

	if v := q.Get("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid customer_id")
		}
		f.CustomerID = id
	}
	f.Email = q.Get("email")
	if v := q.Get("action"); v != "" {
		action := domain.ActionType(v)
		if !action.Valid() {
			return f, errors.New("invalid action")
		}
		f.Action = action
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("invalid since timestamp")
		}
		f.Since = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("invalid until timestamp")
		}
		f.Until = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("invalid limit")
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.New("invalid offset")
		}
		f.Offset = n
	}
	return f, nil
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
