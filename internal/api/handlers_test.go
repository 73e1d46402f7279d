package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxpilot/mailmetrics/internal/analytics"
	"github.com/inboxpilot/mailmetrics/internal/config"
	"github.com/inboxpilot/mailmetrics/internal/metrics"
	"github.com/inboxpilot/mailmetrics/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	store.Add(
		metrics.MetricRecord{Date: "2026-08-01", CompanyID: "acme", Domain: "high.com", MailboxID: "m1", Sent: 1000, Delivered: 990, OpenedTracked: 400},
		metrics.MetricRecord{Date: "2026-08-01", CompanyID: "acme", Domain: "low.com", MailboxID: "m2", Sent: 1000, Delivered: 800, Bounced: 200},
		metrics.MetricRecord{Date: "2026-08-02", CompanyID: "acme", Domain: "high.com", MailboxID: "m1", Sent: 1000, Delivered: 995, OpenedTracked: 420},
	)
	handlers := NewHandlers(analytics.NewService(store))
	return NewServer(config.ServerConfig{Port: 8080, Host: "localhost"}, handlers)
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/health")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSummaryEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/summary?company_id=acme")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analytics.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3000), resp.AggregatedMetrics.Sent)
	assert.Equal(t, 2, resp.DomainCount)
	assert.Equal(t, 2, resp.TotalMailboxes)
}

func TestSummaryEndpointMissingCompany(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/summary")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "company_id")
}

func TestSummaryEndpointBadDate(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/summary?company_id=acme&start_date=08-01-2026")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparisonEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/comparison?company_id=acme")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analytics.ComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Domains, 2)
	assert.Equal(t, "high.com", resp.Domains[0].Key)
	require.NotNil(t, resp.TopPerformer)
	assert.Equal(t, "high.com", resp.TopPerformer.Key)
}

func TestComparisonEndpointDomainFilter(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/comparison?company_id=acme&domains=low.com")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analytics.ComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Domains, 1)
	assert.Equal(t, "low.com", resp.Domains[0].Key)
}

func TestTrendsEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/trends?company_id=acme&granularity=day")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analytics.TrendsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "day", resp.Granularity)
	assert.Len(t, resp.Points, 3)
}

func TestTrendsEndpointBadGranularity(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/trends?company_id=acme&granularity=hourly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsightsEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/insights?company_id=acme")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analytics.InsightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Insights)
	assert.Equal(t, 2, resp.Summary.TotalDomains)
}

func TestInsightsEndpointEmptyScope(t *testing.T) {
	rec := doRequest(t, newTestServer(t), "/api/analytics/insights?company_id=nobody")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analytics.InsightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Insights)
}

func TestTenantEndpointsWithoutRegistry(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "/api/tenants/tenant-1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, srv, "/api/tenants/tenant-1/domains")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a.com"}, splitList("a.com"))
	assert.Equal(t, []string{"a.com", "b.com"}, splitList("a.com, b.com"))
	assert.Equal(t, []string{"a.com"}, splitList("a.com,,"))
}
