package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"makeros/internal/core"
	"makeros/internal/gateway"
	"makeros/internal/services"
	"makeros/internal/spark"
	"makeros/internal/store"
)

type fakeReporter struct {
	status gateway.SyncStatus
}

func (f *fakeReporter) Status() gateway.SyncStatus { return f.status }

type stubProvider struct {
	project core.SuggestedProject
}

func (p *stubProvider) Generate(ctx context.Context) (core.SuggestedProject, error) {
	return p.project, nil
}

func newTestServer(t *testing.T, sp *spark.Service) (*Server, *httptest.Server) {
	t.Helper()
	st := store.New()
	svc := services.NewSet(st, nil)
	srv := NewServer(":0", st, svc, sp, &fakeReporter{}, core.Money{Cents: 250000}, nil)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "ok", string(body))
}

func TestRequestIDHeader(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	first := resp.Header.Get("X-Request-ID")
	require.NotEmpty(t, first)

	resp, err = http.Get(ts.URL + "/api/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NotEqual(t, first, resp.Header.Get("X-Request-ID"))
}

func TestTransactionLifecycle(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]any{
		"item": "plywood",
		"type": "Expense",
		"cost": map[string]any{"cents": 1250},
		"date": "2025-05-20",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[core.Transaction](t, resp)
	require.NotEmpty(t, created.ID)

	resp, err := http.Get(ts.URL + "/api/transactions")
	require.NoError(t, err)
	listed := decodeBody[[]core.Transaction](t, resp)
	require.Len(t, listed, 1)
	require.Equal(t, "plywood", listed[0].Item)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	remaining := decodeBody[[]core.Transaction](t, resp)
	require.Empty(t, remaining)
}

func TestCreateTransactionValidation(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]any{
		"item": "",
		"type": "Expense",
		"cost": map[string]any{"cents": 100},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateTransactionBadJSON(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/transactions", "application/json", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTaskToggleEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", map[string]any{"text": "sweep the shop"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[core.Task](t, resp)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/tasks/"+created.ID+"/toggle", nil)
	tasks := decodeBody[[]core.Task](t, resp)
	require.Len(t, tasks, 1)
	require.True(t, tasks[0].Completed)
}

func TestDashboardEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]any{
		"item": "lumber",
		"type": "Expense",
		"cost": map[string]any{"cents": 50000},
		"date": "2025-05-20",
	})
	resp.Body.Close()
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/classes", map[string]any{
		"name": "Intro to CNC",
		"date": "2025-05-21",
	})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	dash := decodeBody[dashboardResponse](t, resp)

	require.Equal(t, int64(50000), dash.Budget.Spent.Cents)
	require.Equal(t, int64(200000), dash.Budget.Remaining.Cents)
	require.InDelta(t, 20.0, dash.Budget.ProgressPercent, 0.001)
	require.Len(t, dash.Upcoming, 1)
	require.Equal(t, core.KindClass, dash.Upcoming[0].Kind)
	// 2025-05-21 is a Wednesday, Monday-first index 2.
	require.Len(t, dash.Week[2], 1)
}

func TestSnapshotEndpointKeys(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/snapshot")
	require.NoError(t, err)
	snap := decodeBody[map[string]json.RawMessage](t, resp)
	for _, key := range []string{"stats", "transactions", "classes", "events", "tasks", "shoppingList", "activator"} {
		require.Contains(t, snap, key)
	}
}

func TestActivatorEndpoints(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/activator")
	require.NoError(t, err)
	doc := decodeBody[core.ActivatorDocument](t, resp)
	require.Equal(t, core.DefaultActivator().Title, doc.Title)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/activator", map[string]any{
		"title": "Kinetic Sculpture Jam",
		"month": "June",
	})
	replaced := decodeBody[core.ActivatorDocument](t, resp)
	require.Equal(t, "Kinetic Sculpture Jam", replaced.Title)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/activator", map[string]any{"title": ""})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSyncStatusEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/sync")
	require.NoError(t, err)
	status := decodeBody[gateway.SyncStatus](t, resp)
	require.Zero(t, status.Pending)
}

func TestSparkEndpointsUnconfigured(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/spark")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSparkEndpoints(t *testing.T) {
	st := store.New()
	svc := services.NewSet(st, nil)
	sp := spark.NewService(&stubProvider{project: core.SuggestedProject{
		Title:       "Wind-up walker",
		Description: "A cam-driven cardboard creature.",
		Materials:   []string{"cardboard", "dowels"},
		Difficulty:  "Beginner",
		Vibe:        "whimsical",
	}}, st, nil)
	srv := NewServer(":0", st, svc, sp, &fakeReporter{}, core.Money{Cents: 250000}, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	resp, err := http.Get(ts.URL + "/api/spark")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[core.SuggestedProject](t, resp)
	require.Equal(t, "Wind-up walker", got.Title)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/spark/promote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decodeBody[core.ActivatorDocument](t, resp)
	require.Equal(t, "Wind-up walker", doc.Title)
	require.Equal(t, core.PromotionInstructions, doc.Instructions)
	require.Equal(t, doc, st.Activator())
}

func TestPromoteWithoutSuggestionConflicts(t *testing.T) {
	st := store.New()
	svc := services.NewSet(st, nil)
	sp := spark.NewService(&stubProvider{}, st, nil)
	srv := NewServer(":0", st, svc, sp, &fakeReporter{}, core.Money{Cents: 250000}, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()
	defer srv.Shutdown(context.Background())

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/spark/promote", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}
