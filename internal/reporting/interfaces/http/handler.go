package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meterdash/internal/audit"
	"meterdash/internal/auth"
	"meterdash/internal/observability/metrics"
	"meterdash/internal/reporting/application"
	reporting "meterdash/internal/reporting/domain"
)

// ReportsHandler serves the range-scoped analytics views for every
// configured domain: summary cards, per-month series, top consumer and the
// water hierarchy block, plus the range/type selection and snapshot refresh
// operations.
type ReportsHandler struct {
	services map[string]*application.DashboardService
	auditor  audit.Logger
}

// NewReportsHandler constructs a ReportsHandler.
func NewReportsHandler(services map[string]*application.DashboardService, auditor audit.Logger) (*ReportsHandler, error) {
	if len(services) == 0 {
		return nil, errors.New("reports handler: no dashboard services")
	}
	return &ReportsHandler{services: services, auditor: auditor}, nil
}

// ServeHTTP routes /api/v1/reports/{domain}/{view}.
func (h *ReportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || len(h.services) == 0 {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	domain, view, ok := splitReportPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	service, ok := h.services[domain]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown domain %q", domain), http.StatusNotFound)
		return
	}

	switch view {
	case "summary", "series", "top-consumer", "hierarchy":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRead(w, r, service, view)
	case "range":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRangeCommit(w, r, service)
	case "type":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleTypeSelect(w, r, service)
	case "refresh":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRefresh(w, r, service)
	default:
		http.NotFound(w, r)
	}
}

// handleRead serves the views off the committed snapshot. When the request
// carries explicit start/end parameters the view is computed against that
// range directly instead of the committed one, leaving the committed
// selection untouched.
func (h *ReportsHandler) handleRead(w http.ResponseWriter, r *http.Request, service *application.DashboardService, view string) {
	snapshot, err := h.snapshotFor(r, service)
	if err != nil {
		writeSnapshotError(w, err)
		return
	}

	switch view {
	case "summary":
		writeJSON(w, snapshot)
	case "series":
		writeJSON(w, map[string]any{
			"domain":  snapshot.Domain,
			"range":   snapshot.Range,
			"monthly": snapshot.Monthly,
			"by_type": snapshot.ByType,
		})
	case "top-consumer":
		writeJSON(w, map[string]any{
			"domain":       snapshot.Domain,
			"range":        snapshot.Range,
			"top_consumer": snapshot.TopConsumer,
		})
	case "hierarchy":
		if snapshot.Hierarchy == nil {
			http.Error(w, "domain has no hierarchy", http.StatusNotFound)
			return
		}
		writeJSON(w, snapshot.Hierarchy)
	}
}

type rangeRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (h *ReportsHandler) handleRangeCommit(w http.ResponseWriter, r *http.Request, service *application.DashboardService) {
	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := service.StageRange(req.Start, req.End); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	snapshot, err := service.CommitRange()
	metrics.ObserveRecompute(service.Domain(), err, time.Since(start))
	if err != nil {
		writeSnapshotError(w, err)
		return
	}
	h.logAudit(r, service.Domain(), "range.commit", fmt.Sprintf("%d..%d", req.Start, req.End))
	writeJSON(w, snapshot)
}

type typeRequest struct {
	Type string `json:"type"`
}

func (h *ReportsHandler) handleTypeSelect(w http.ResponseWriter, r *http.Request, service *application.DashboardService) {
	var req typeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	snapshot, err := service.SelectType(req.Type)
	metrics.ObserveRecompute(service.Domain(), err, time.Since(start))
	if err != nil {
		writeSnapshotError(w, err)
		return
	}
	h.logAudit(r, service.Domain(), "type.select", req.Type)
	writeJSON(w, snapshot)
}

func (h *ReportsHandler) handleRefresh(w http.ResponseWriter, r *http.Request, service *application.DashboardService) {
	start := time.Now()
	err := service.Refresh(r.Context())
	metrics.ObserveRefresh(service.Domain(), err, time.Since(start))
	if err != nil {
		http.Error(w, "snapshot refresh error", http.StatusBadGateway)
		return
	}
	h.logAudit(r, service.Domain(), "snapshot.refresh", "")
	snapshot, err := service.Current()
	if err != nil {
		writeSnapshotError(w, err)
		return
	}
	writeJSON(w, snapshot)
}

// snapshotFor resolves the snapshot a read should serve: the committed one,
// or an ad-hoc recompute when the query carries start/end.
func (h *ReportsHandler) snapshotFor(r *http.Request, service *application.DashboardService) (application.Snapshot, error) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")
	if startParam == "" && endParam == "" {
		return service.Current()
	}
	start, err := strconv.Atoi(startParam)
	if err != nil {
		return application.Snapshot{}, fmt.Errorf("invalid start: %w", reporting.ErrRangeOutOfBounds)
	}
	end, err := strconv.Atoi(endParam)
	if err != nil {
		return application.Snapshot{}, fmt.Errorf("invalid end: %w", reporting.ErrRangeOutOfBounds)
	}
	return service.Compute(start, end, r.URL.Query().Get("type"))
}

func (h *ReportsHandler) logAudit(r *http.Request, domain, action, resourceID string) {
	if h.auditor == nil {
		return
	}
	_ = h.auditor.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "report",
		ResourceID:   resourceID,
		Domain:       domain,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func splitReportPath(path string) (domain, view string, ok bool) {
	const prefix = "/api/v1/reports/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func writeSnapshotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrNoSnapshot):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, reporting.ErrRangeOutOfBounds):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "report error", http.StatusInternalServerError)
	}
}
