package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"highxofy/internal/audit"
	"highxofy/internal/auth"
	"highxofy/internal/baseline/application"
	baseline "highxofy/internal/baseline/domain"
	"highxofy/internal/baseline/interfaces"
	"highxofy/internal/observability/metrics"
)

const (
	timeLayout   = time.RFC3339
	basePath     = "/api/v1/baselines"
	exportPath   = basePath + "/export.xlsx"
	calculateURL = basePath + "/calculate"
	maxLimit     = 10000
)

// ServiceFactory builds a calculation service bound to one subject.
type ServiceFactory func(subjectID string) (*application.Service, error)

// Handler serves baseline endpoints.
type Handler struct {
	services       ServiceFactory
	repo           baseline.ResultRepository
	cfg            baseline.Config
	defaultSubject string
	metrics        *metrics.Metrics
	auditLogger    audit.Logger
	logger         *log.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaultSubject is used when a request carries no subject_id.
func WithDefaultSubject(subjectID string) Option {
	return func(h *Handler) { h.defaultSubject = subjectID }
}

// WithMetrics counts exports.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithAuditLogger records calculate and export requests.
func WithAuditLogger(logger audit.Logger) Option {
	return func(h *Handler) { h.auditLogger = logger }
}

// WithLogger sets the handler logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a Handler.
func NewHandler(services ServiceFactory, repo baseline.ResultRepository, cfg baseline.Config, opts ...Option) (*Handler, error) {
	if services == nil {
		return nil, errors.New("baseline handler: nil service factory")
	}
	if repo == nil {
		return nil, errors.New("baseline handler: nil result repository")
	}
	h := &Handler{services: services, repo: repo, cfg: cfg, logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP routes baseline requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == basePath && r.Method == http.MethodGet:
		h.handleList(w, r)
	case r.URL.Path == exportPath && r.Method == http.MethodGet:
		h.handleExport(w, r)
	case r.URL.Path == calculateURL && r.Method == http.MethodPost:
		h.handleCalculate(w, r)
	case r.URL.Path == basePath || r.URL.Path == exportPath || r.URL.Path == calculateURL:
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	subjectID, query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	results, err := h.repo.ListResults(r.Context(), subjectID, query)
	if err != nil {
		h.logger.Printf("baseline_list_failed subject=%s err=%v", subjectID, err)
		http.Error(w, "query baselines error", http.StatusInternalServerError)
		return
	}

	out := make([]resultDTO, 0, len(results))
	for _, result := range results {
		out = append(out, toResultDTO(result))
	}
	writeJSON(w, http.StatusOK, listResponse{SubjectID: subjectID, Count: len(out), Results: out})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	subjectID, query, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	results, err := h.repo.ListResults(r.Context(), subjectID, query)
	if err != nil {
		h.metrics.ObserveExport("xlsx", metrics.ResultError)
		http.Error(w, "query baselines error", http.StatusInternalServerError)
		return
	}
	data, err := interfaces.BuildResultsXLSX(subjectID, baseline.Summarize(results, h.cfg), results)
	if err != nil {
		h.metrics.ObserveExport("xlsx", metrics.ResultError)
		h.logger.Printf("baseline_export_failed subject=%s err=%v", subjectID, err)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveExport("xlsx", metrics.ResultSuccess)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "baselines-"+subjectID+".xlsx"))
	_, _ = w.Write(data)
	h.logAudit(r, subjectID, auth.ActionExport, map[string]any{"rows": len(results)})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID string `json:"subject_id"`
		From      string `json:"from"`
		To        string `json:"to"`
		Save      *bool  `json:"save"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	subjectID := h.subjectOrDefault(req.SubjectID)
	if subjectID == "" {
		http.Error(w, "subject_id is required", http.StatusBadRequest)
		return
	}
	if err := auth.CheckSubject(r.Context(), subjectID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	from, err := parseTime("from", req.From)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseTime("to", req.To)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	service, err := h.services(subjectID)
	if errors.Is(err, baseline.ErrUnknownSubject) {
		http.Error(w, "unknown subject_id", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Printf("baseline_source_failed subject=%s err=%v", subjectID, err)
		http.Error(w, "demand source unavailable", http.StatusServiceUnavailable)
		return
	}
	save := req.Save == nil || *req.Save
	result, err := service.Run(r.Context(), application.RunRequest{SubjectID: subjectID, From: from, To: to, Save: save})
	if err != nil {
		h.logger.Printf("baseline_calculate_failed subject=%s err=%v", subjectID, err)
		if errors.Is(err, baseline.ErrParse) || errors.Is(err, baseline.ErrInvalidInvokedUnit) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "calculate error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toCalculateResponse(result, save))
	h.logAudit(r, subjectID, auth.ActionCalculate, map[string]any{
		"from":    req.From,
		"to":      req.To,
		"save":    save,
		"records": len(result.Records),
	})
}

func (h *Handler) logAudit(r *http.Request, subjectID string, action auth.Action, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	entry, err := audit.FromRequest(r, string(action), subjectID, meta)
	if err != nil {
		h.logger.Printf("audit_failed action=%s subject=%s err=%v", action, subjectID, err)
		return
	}
	entry.Role = string(auth.RoleFromContext(r.Context()))
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		entry.Actor = claims.Subject
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit_failed action=%s subject=%s err=%v", action, subjectID, err)
	}
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (string, baseline.ResultQuery, bool) {
	values := r.URL.Query()
	subjectID := h.subjectOrDefault(values.Get("subject_id"))
	if subjectID == "" {
		http.Error(w, "subject_id is required", http.StatusBadRequest)
		return "", baseline.ResultQuery{}, false
	}
	if err := auth.CheckSubject(r.Context(), subjectID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", baseline.ResultQuery{}, false
	}

	var (
		query baseline.ResultQuery
		err   error
	)
	if query.From, err = parseTime("from", values.Get("from")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", baseline.ResultQuery{}, false
	}
	if query.To, err = parseTime("to", values.Get("to")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", baseline.ResultQuery{}, false
	}
	if value := values.Get("day_type"); value != "" {
		if query.DayType, err = baseline.ParseDayType(strings.ToLower(value)); err != nil {
			http.Error(w, "day_type must be weekday or holiday", http.StatusBadRequest)
			return "", baseline.ResultQuery{}, false
		}
	}
	if value := values.Get("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit <= 0 || limit > maxLimit {
			http.Error(w, fmt.Sprintf("limit must be between 1 and %d", maxLimit), http.StatusBadRequest)
			return "", baseline.ResultQuery{}, false
		}
		query.Limit = limit
	}
	return subjectID, query, true
}

func (h *Handler) subjectOrDefault(subjectID string) string {
	if subjectID != "" {
		return subjectID
	}
	return h.defaultSubject
}

func parseTime(key, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC3339")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
