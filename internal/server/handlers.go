// Package server exposes the engine over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hawkline-systems/hawkline/internal/alerting"
	"github.com/hawkline-systems/hawkline/internal/analytics"
	"github.com/hawkline-systems/hawkline/internal/correlation"
	"github.com/hawkline-systems/hawkline/internal/httputil"
	"github.com/hawkline-systems/hawkline/internal/logging"
	"github.com/hawkline-systems/hawkline/internal/repository"
	"github.com/hawkline-systems/hawkline/internal/service"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Handler holds the HTTP endpoint implementations.
type Handler struct {
	svc *service.Service
	log *logging.Logger
}

// NewHandler creates a handler over the service.
func NewHandler(svc *service.Service, log *logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ingestRequest is the wire form of a signal submission.
type ingestRequest struct {
	Kind        string         `json:"kind"`
	Source      string         `json:"source"`
	ProducedAt  *time.Time     `json:"produced_at,omitempty"`
	Confidence  *float64       `json:"confidence,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
}

// IngestSignal accepts one signal and returns the composites and alerts it
// produced.
func (h *Handler) IngestSignal(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := signal.Signal{
		Fingerprint: req.Fingerprint,
		Kind:        req.Kind,
		Source:      req.Source,
		Confidence:  req.Confidence,
		Metadata:    req.Metadata,
	}
	if req.ProducedAt != nil {
		s.ProducedAt = *req.ProducedAt
	}

	result, err := h.svc.Ingest(r.Context(), s)
	if err != nil {
		var verr *signal.ValidationError
		if errors.As(err, &verr) {
			httputil.WriteError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "ingest failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "ingest failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// RecentSignals returns the most recent signals in arrival order.
func (h *Handler) RecentSignals(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	signals := h.svc.Engine().RecentSignals(limit)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"signals": signals,
		"count":   len(signals),
	})
}

// Analytics returns a metrics snapshot over the requested window.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.svc.Engine().Snapshot(window))
}

// AnalyticsExport returns the snapshot serialized as JSON or CSV.
func (h *Handler) AnalyticsExport(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}
	format := analytics.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = analytics.FormatJSON
	}

	out, err := h.svc.Engine().Export(window, format)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch format {
	case analytics.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// AnalyticsTrend returns hourly trend buckets over the retained history.
func (h *Handler) AnalyticsTrend(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.WriteError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"buckets": h.svc.Engine().Trend(hours),
	})
}

// correlationRuleRequest is the wire form of a correlation rule.
type correlationRuleRequest struct {
	ID                   string   `json:"id"`
	RequiredKinds        []string `json:"required_kinds"`
	Window               string   `json:"window"`
	MinAverageConfidence float64  `json:"min_average_confidence"`
	OutputPattern        string   `json:"output_pattern"`
}

// CreateCorrelationRule registers or replaces a correlation rule.
func (h *Handler) CreateCorrelationRule(w http.ResponseWriter, r *http.Request) {
	var req correlationRuleRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := time.ParseDuration(req.Window)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid window: "+err.Error())
		return
	}
	rule := correlation.Rule{
		ID:                   req.ID,
		RequiredKinds:        req.RequiredKinds,
		Window:               window,
		MinAverageConfidence: req.MinAverageConfidence,
		OutputPattern:        req.OutputPattern,
	}
	if err := h.svc.Engine().AddCorrelationRule(rule); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rule)
}

// ListCorrelationRules returns registered correlation rules in evaluation
// order.
func (h *Handler) ListCorrelationRules(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"rules": h.svc.Engine().CorrelationRules(),
	})
}

// DeleteCorrelationRule removes a correlation rule by id.
func (h *Handler) DeleteCorrelationRule(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/rules/correlation/")
	if err := h.svc.Engine().RemoveCorrelationRule(id); err != nil {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// alertRuleRequest is the wire form of an alert rule.
type alertRuleRequest struct {
	ID        string                 `json:"id"`
	Priority  string                 `json:"priority"`
	Cooldown  string                 `json:"cooldown"`
	Enabled   *bool                  `json:"enabled,omitempty"`
	Condition alerting.ConditionSpec `json:"condition"`
}

// alertRuleView is the read form, with the condition omitted since the
// evaluatable form is not serialized.
type alertRuleView struct {
	ID       string          `json:"id"`
	Priority signal.Priority `json:"priority"`
	Cooldown string          `json:"cooldown"`
	Enabled  bool            `json:"enabled"`
}

// CreateAlertRule registers or replaces an alert rule.
func (h *Handler) CreateAlertRule(w http.ResponseWriter, r *http.Request) {
	var req alertRuleRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	cooldown, err := time.ParseDuration(req.Cooldown)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid cooldown: "+err.Error())
		return
	}
	cond, err := req.Condition.Build()
	if err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	rule := alerting.Rule{
		ID:        req.ID,
		Priority:  signal.Priority(req.Priority),
		Cooldown:  cooldown,
		Enabled:   enabled,
		Condition: cond,
	}
	if err := h.svc.Engine().AddAlertRule(rule); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, alertRuleView{
		ID:       rule.ID,
		Priority: rule.Priority,
		Cooldown: rule.Cooldown.String(),
		Enabled:  rule.Enabled,
	})
}

// ListAlertRules returns registered alert rules in evaluation order.
func (h *Handler) ListAlertRules(w http.ResponseWriter, _ *http.Request) {
	rules := h.svc.Engine().AlertRules()
	views := make([]alertRuleView, 0, len(rules))
	for _, r := range rules {
		views = append(views, alertRuleView{
			ID:       r.ID,
			Priority: r.Priority,
			Cooldown: r.Cooldown.String(),
			Enabled:  r.Enabled,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rules": views})
}

// UpdateAlertRule handles enable/disable/delete on one alert rule.
func (h *Handler) UpdateAlertRule(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/rules/alerts/")
	eng := h.svc.Engine()

	switch {
	case r.Method == http.MethodPut && strings.HasSuffix(rest, "/enable"):
		id := strings.TrimSuffix(rest, "/enable")
		if err := eng.EnableAlertRule(id); err != nil {
			httputil.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPut && strings.HasSuffix(rest, "/disable"):
		id := strings.TrimSuffix(rest, "/disable")
		if err := eng.DisableAlertRule(id); err != nil {
			httputil.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete:
		if err := eng.RemoveAlertRule(rest); err != nil {
			httputil.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ListArchivedAlerts pages the Postgres alert archive, when configured.
func (h *Handler) ListArchivedAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := repository.ListAlertsRequest{
		RuleID:   q.Get("rule_id"),
		Priority: signal.Priority(q.Get("priority")),
	}
	if v := q.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}

	alerts, total, err := h.svc.ListArchivedAlerts(r.Context(), req)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list archived alerts", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"total":  total,
	})
}

// parseWindow reads an optional ?window= duration. Zero means the
// aggregator default.
func parseWindow(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	v := r.URL.Query().Get("window")
	if v == "" {
		return 0, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "window must be a positive duration")
		return 0, false
	}
	return d, true
}
