package interfaces

import (
	"encoding/csv"
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
)

// ExportHandler serves the full-history table exports. Every export sums the
// domain's entire month superset: the selected analytics range never scopes
// these views.
type ExportHandler struct {
	services map[string]*application.DashboardService
	auditor  audit.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(services map[string]*application.DashboardService, auditor audit.Logger) (*ExportHandler, error) {
	if len(services) == 0 {
		return nil, errors.New("export handler: no dashboard services")
	}
	return &ExportHandler{services: services, auditor: auditor}, nil
}

// ServeHTTP routes /api/v1/exports/{domain}/{file}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || len(h.services) == 0 {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	domain, file, ok := splitExportPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	service, ok := h.services[domain]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown domain %q", domain), http.StatusNotFound)
		return
	}

	started := time.Now()
	var (
		format string
		err    error
	)
	switch file {
	case "records.csv":
		format = "csv"
		err = h.serveCSV(w, service)
	case "records.xlsx":
		format = "xlsx"
		err = h.serveXLSX(w, service)
	case "summary.pdf":
		format = "pdf"
		err = h.servePDF(w, service)
	default:
		http.NotFound(w, r)
		return
	}
	metrics.ObserveExport(domain, format, err, time.Since(started))
	if err != nil {
		writeExportError(w, err)
		return
	}
	h.logAudit(r, domain, format)
}

func (h *ExportHandler) serveCSV(w http.ResponseWriter, service *application.DashboardService) error {
	records, err := service.Records()
	if err != nil {
		return err
	}
	agg := service.Aggregator()
	index := agg.HistoryIndex()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer := csv.NewWriter(w)

	header := []string{"name", "account", "type"}
	for i := 0; i < index.Len(); i++ {
		key, err := index.KeyAt(i)
		if err != nil {
			return err
		}
		header = append(header, key)
	}
	header = append(header, "total")
	_ = writer.Write(header)

	for _, record := range records {
		row := []string{record.Name, record.Account, record.Type}
		for i := 0; i < index.Len(); i++ {
			key, err := index.KeyAt(i)
			if err != nil {
				return err
			}
			row = append(row, formatFloat(record.ValueAt(key)))
		}
		row = append(row, formatFloat(agg.FullHistoryTotal(record)))
		_ = writer.Write(row)
	}
	writer.Flush()
	return writer.Error()
}

func (h *ExportHandler) serveXLSX(w http.ResponseWriter, service *application.DashboardService) error {
	records, err := service.Records()
	if err != nil {
		return err
	}
	data, err := BuildRecordsXLSX(service.Domain(), service.Aggregator(), records)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-records.xlsx", service.Domain()))
	_, err = w.Write(data)
	return err
}

func (h *ExportHandler) servePDF(w http.ResponseWriter, service *application.DashboardService) error {
	snapshot, err := service.Current()
	if err != nil {
		return err
	}
	data, err := BuildSummaryPDF(snapshot, service.Aggregator().Index())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-summary.pdf", service.Domain()))
	_, err = w.Write(data)
	return err
}

func (h *ExportHandler) logAudit(r *http.Request, domain, format string) {
	if h.auditor == nil {
		return
	}
	_ = h.auditor.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "export",
		ResourceType: "report",
		ResourceID:   format,
		Domain:       domain,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func splitExportPath(path string) (domain, file string, ok bool) {
	const prefix = "/api/v1/exports/"
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

func writeExportError(w http.ResponseWriter, err error) {
	if errors.Is(err, application.ErrNoSnapshot) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "export error", http.StatusInternalServerError)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
