package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inboxpilot/mailmetrics/internal/analytics"
	"github.com/inboxpilot/mailmetrics/internal/metrics"
	"github.com/inboxpilot/mailmetrics/internal/repository/postgres"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	analytics *analytics.Service
	tenants   *postgres.TenantRepo
	startedAt time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *analytics.Service) *Handlers {
	return &Handlers{
		analytics: svc,
		startedAt: time.Now(),
	}
}

// SetTenantRepo sets the tenant registry repository
func (h *Handlers) SetTenantRepo(repo *postgres.TenantRepo) {
	h.tenants = repo
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

// parseQuery extracts the analytics filter scope from query parameters.
// Multi-value filters accept comma-separated lists.
func parseQuery(r *http.Request) metrics.Query {
	params := r.URL.Query()
	return metrics.Query{
		CompanyID:   params.Get("company_id"),
		DomainIDs:   splitList(params.Get("domains")),
		MailboxIDs:  splitList(params.Get("mailboxes")),
		StartDate:   params.Get("start_date"),
		EndDate:     params.Get("end_date"),
		Granularity: metrics.Granularity(params.Get("granularity")),
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// respondAnalyticsError maps pipeline errors to HTTP statuses: rejected
// query parameters are the caller's fault, everything else is upstream.
func respondAnalyticsError(w http.ResponseWriter, err error) {
	var ve *analytics.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ve.Error())
		return
	}
	log.Printf("[API] Analytics request failed: %v", err)
	respondError(w, http.StatusInternalServerError, "failed to load metrics")
}

// Health check

// HealthCheck returns the health status of the API
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startedAt).String(),
	})
}

// Analytics endpoints

// HandleSummary returns aggregated metrics and per-domain rate distributions
// for the filter scope.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analytics.Summary(r.Context(), parseQuery(r))
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleComparison returns domains ranked by delivery rate.
func (h *Handlers) HandleComparison(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analytics.Comparison(r.Context(), parseQuery(r))
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleTrends returns the time-bucketed series with trend classification.
func (h *Handlers) HandleTrends(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analytics.Trends(r.Context(), parseQuery(r))
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleInsights returns heuristic observations over the filter scope.
func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analytics.Insights(r.Context(), parseQuery(r))
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Tenant registry endpoints

// HandleGetTenant returns a tenant from the registry.
func (h *Handlers) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	if h.tenants == nil {
		respondError(w, http.StatusServiceUnavailable, "tenant registry not configured")
		return
	}
	tenant, err := h.tenants.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err == postgres.ErrNotFound {
		respondError(w, http.StatusNotFound, "tenant not found")
		return
	}
	if err != nil {
		log.Printf("[API] Tenant lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load tenant")
		return
	}
	respondJSON(w, http.StatusOK, tenant)
}

// HandleListDomains returns the sending domains registered to a tenant.
func (h *Handlers) HandleListDomains(w http.ResponseWriter, r *http.Request) {
	if h.tenants == nil {
		respondError(w, http.StatusServiceUnavailable, "tenant registry not configured")
		return
	}
	domains, err := h.tenants.ListSendingDomains(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		log.Printf("[API] Domain listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load domains")
		return
	}
	if domains == nil {
		domains = []postgres.SendingDomain{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"domains": domains})
}

// HandleListMailboxes returns the mailboxes under a sending domain.
func (h *Handlers) HandleListMailboxes(w http.ResponseWriter, r *http.Request) {
	if h.tenants == nil {
		respondError(w, http.StatusServiceUnavailable, "tenant registry not configured")
		return
	}
	mailboxes, err := h.tenants.ListMailboxes(r.Context(), chi.URLParam(r, "domainID"))
	if err != nil {
		log.Printf("[API] Mailbox listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load mailboxes")
		return
	}
	if mailboxes == nil {
		mailboxes = []postgres.Mailbox{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"mailboxes": mailboxes})
}
