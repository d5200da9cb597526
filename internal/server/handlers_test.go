package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkline-systems/hawkline/internal/engine"
	"github.com/hawkline-systems/hawkline/internal/logging"
	"github.com/hawkline-systems/hawkline/internal/service"
)

func setupTestServer(t *testing.T, opts engine.Options) *httptest.Server {
	t.Helper()
	log := logging.New("error", "text")
	svc := service.New(engine.New(opts), nil, nil, log)
	srv := httptest.NewServer(NewRouter(NewHandler(svc, log)))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealthCheck(t *testing.T) {
	srv := setupTestServer(t, engine.Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestIngestSignal(t *testing.T) {
	srv := setupTestServer(t, engine.Options{})

	t.Run("valid signal accepted", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/signals", map[string]any{
			"kind":       "detection",
			"source":     "watcher-1",
			"confidence": 0.95,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result struct {
			Signal struct {
				Fingerprint string `json:"fingerprint"`
			} `json:"signal"`
			Alerts []struct {
				RuleID string `json:"rule_id"`
			} `json:"alerts"`
		}
		decode(t, resp, &result)
		assert.NotEmpty(t, result.Signal.Fingerprint)
		// Default high-confidence-detection rule fires.
		require.Len(t, result.Alerts, 1)
		assert.Equal(t, "high-confidence-detection", result.Alerts[0].RuleID)
	})

	t.Run("invalid confidence rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/signals", map[string]any{
			"kind":       "detection",
			"source":     "watcher-1",
			"confidence": 1.5,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/signals", "application/json", bytes.NewReader([]byte("{")))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestIngestCorrelationScenario(t *testing.T) {
	srv := setupTestServer(t, engine.Options{})

	resp := postJSON(t, srv.URL+"/api/v1/signals", map[string]any{
		"kind": "cex_funding", "source": "A", "confidence": 0.85,
	})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/v1/signals", map[string]any{
		"kind": "rapid_deploy", "source": "B", "confidence": 0.78,
	})
	var result struct {
		Composites []struct {
			Pattern             string   `json:"pattern"`
			ContributingSources []string `json:"contributing_sources"`
		} `json:"composites"`
	}
	decode(t, resp, &result)
	require.Len(t, result.Composites, 1)
	assert.Equal(t, "coordinated_funding_deployment", result.Composites[0].Pattern)
	assert.ElementsMatch(t, []string{"A", "B"}, result.Composites[0].ContributingSources)
}

func TestRecentSignals(t *testing.T) {
	srv := setupTestServer(t, engine.Options{SkipDefaultRules: true})

	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/api/v1/signals", map[string]any{
			"kind": "detection", "source": "w", "confidence": 0.5,
		})
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/v1/signals/recent?limit=2")
	require.NoError(t, err)
	var body struct {
		Count int `json:"count"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 2, body.Count)

	resp, err = http.Get(srv.URL + "/api/v1/signals/recent?limit=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := setupTestServer(t, engine.Options{SkipDefaultRules: true})

	resp := postJSON(t, srv.URL+"/api/v1/signals", map[string]any{
		"kind": "detection", "source": "w", "confidence": 0.9,
	})
	resp.Body.Close()

	t.Run("snapshot", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analytics?window=1h")
		require.NoError(t, err)
		var snap struct {
			TotalSignals int `json:"total_signals"`
		}
		decode(t, resp, &snap)
		assert.Equal(t, 1, snap.TotalSignals)
	})

	t.Run("bad window", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analytics?window=yesterday")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("csv export", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analytics/export?format=csv")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	})

	t.Run("trend", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/analytics/trend?hours=6")
		require.NoError(t, err)
		var body struct {
			Buckets []struct {
				Count int `json:"count"`
			} `json:"buckets"`
		}
		decode(t, resp, &body)
		assert.Len(t, body.Buckets, 6)
	})
}

func TestCorrelationRuleEndpoints(t *testing.T) {
	srv := setupTestServer(t, engine.Options{SkipDefaultRules: true})

	t.Run("create", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/rules/correlation", map[string]any{
			"id":                     "ab",
			"required_kinds":         []string{"a", "b"},
			"window":                 "45s",
			"min_average_confidence": 0.7,
			"output_pattern":         "ab_pattern",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/rules/correlation")
		require.NoError(t, err)
		var body struct {
			Rules []struct {
				ID string `json:"id"`
			} `json:"rules"`
		}
		decode(t, resp, &body)
		require.Len(t, body.Rules, 1)
		assert.Equal(t, "ab", body.Rules[0].ID)
	})

	t.Run("invalid rule rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/rules/correlation", map[string]any{
			"id": "bad", "required_kinds": []string{}, "window": "30s", "output_pattern": "p",
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/rules/correlation/ab", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAlertRuleEndpoints(t *testing.T) {
	srv := setupTestServer(t, engine.Options{SkipDefaultRules: true})

	t.Run("create", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/rules/alerts", map[string]any{
			"id":       "burst",
			"priority": "high",
			"cooldown": "60s",
			"condition": map[string]any{
				"type":      "metadata_above",
				"field":     "deploys_per_hour",
				"threshold": 10,
			},
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("invalid condition rejected", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/rules/alerts", map[string]any{
			"id": "bad", "priority": "high", "cooldown": "60s",
			"condition": map[string]any{"type": "regex"},
		})
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("disable and enable", func(t *testing.T) {
		for _, action := range []string{"disable", "enable"} {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/rules/alerts/burst/"+action, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/rules/alerts/burst", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("unknown rule returns not found", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/rules/alerts/ghost/enable", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	srv := setupTestServer(t, engine.Options{})
	resp, err := http.Get(srv.URL + "/api/v1/signals")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
