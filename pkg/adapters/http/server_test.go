package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/validator"
	"github.com/aretw0/rcflow/pkg/adapters/memory"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/dsl"
	"github.com/aretw0/rcflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func docks() *domain.Project {
	b := dsl.New()
	b.Add("start").Start().Go("gate")
	b.Add("gate").Condition("honor_level", domain.OpGreater, "50").True("welcome").False("warning")
	b.Add("welcome").Dialogue("Marcus", "Good to see you.").
		Choice("c_job", "Any work?", "job_offer").
		Choice("c_bye", "Bye", "end")
	b.Add("warning").Dialogue("Marcus", "Get lost.").Choice("c_ok", "Ok", "end")
	b.Add("job_offer").Dialogue("Marcus", "Unload the boat.").Choice("c_fine", "Fine", "end")
	b.Add("end").End()
	return b.Project("proj_docks", "Docks")
}

func newTestHandler(opts ...Option) http.Handler {
	eng := rcflow.New(
		rcflow.WithProjectStore(memory.NewProjectStore(docks())),
		rcflow.WithInitialMemory(domain.GameMemory{"honor_level": 55}),
	)
	return NewHandler(eng, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, rcflow.Version, info["version"])
}

func TestProjects_CRUD(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodPost, "/projects", `{"name":"Harbor talk","group":"Harbor"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[domain.Project](t, w)
	assert.Equal(t, "Harbor", created.Group)
	require.Len(t, created.Data.Nodes, 1)

	w = do(t, h, http.MethodGet, "/projects", "")
	list := decodeBody[[]domain.ProjectSummary](t, w)
	assert.Len(t, list, 2)

	w = do(t, h, http.MethodPost, "/projects/"+created.ID+"/move", `{"group":"Docks"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Docks", decodeBody[domain.Project](t, w).Group)

	w = do(t, h, http.MethodGet, "/groups", "")
	assert.Contains(t, decodeBody[[]string](t, w), "Docks")

	w = do(t, h, http.MethodDelete, "/projects/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/projects/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjects_ReplaceValidates(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodPut, "/projects/proj_docks", `{"name":"","data":{"nodes":[{"id":"a","type":"NOPE"}],"connections":[]}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody[errorResponse](t, w)
	assert.NotEmpty(t, resp.Fields)

	w = do(t, h, http.MethodPut, "/projects/proj_docks", `{"id":"ignored","name":"Docks v2","data":{"nodes":[{"id":"start","type":"START"}],"connections":[]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decodeBody[domain.Project](t, w)
	assert.Equal(t, "proj_docks", p.ID)
	assert.NotZero(t, p.UpdatedAt)
}

func TestProjects_ExportImport(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodGet, "/projects/proj_docks/export?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="docks.yaml"`)
	doc := w.Body.String()
	assert.Contains(t, doc, "app: RC-Interactions Dialogue Architect")

	doc = strings.Replace(doc, "id: proj_docks", "id: proj_copy", 1)
	w = do(t, h, http.MethodPost, "/projects/import?format=yaml", doc)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "proj_copy", decodeBody[domain.Project](t, w).ID)

	w = do(t, h, http.MethodPost, "/projects/import", `{"unrelated":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_GraphAndLint(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodGet, "/projects/proj_docks/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.NotContains(t, w.Body.String(), "classDef current")

	do(t, h, http.MethodPost, "/projects/proj_docks/interactions", `{"session_id":"s1"}`)
	w = do(t, h, http.MethodGet, "/projects/proj_docks/graph?session=s1", "")
	assert.Contains(t, w.Body.String(), "classDef current")

	w = do(t, h, http.MethodGet, "/projects/proj_docks/lint", "")
	require.Equal(t, http.StatusOK, w.Code)
	report := decodeBody[validator.Report](t, w)
	assert.Empty(t, report.Errors)
}

func TestInteractions_Flow(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodPost, "/projects/proj_docks/interactions", `{"session_id":"s1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decodeBody[domain.Outcome](t, w)
	assert.Equal(t, "welcome", out.View.NodeID)

	w = do(t, h, http.MethodPost, "/projects/proj_docks/interactions", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/interactions/s1/select", `{"node_id":"warning","choice_id":"c_ok"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/interactions/s1/select", `{"node_id":"welcome","choice_id":"c_nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/interactions/s1/select", `{"node_id":"welcome","choice_id":"c_job"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "job_offer", decodeBody[domain.Outcome](t, w).View.NodeID)

	w = do(t, h, http.MethodGet, "/interactions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "job_offer", decodeBody[domain.Outcome](t, w).Interaction.CurrentNodeID)

	w = do(t, h, http.MethodPost, "/interactions/s1/select", `{"node_id":"job_offer","choice_id":"c_fine"}`)
	require.Equal(t, http.StatusOK, w.Code)
	out = decodeBody[domain.Outcome](t, w)
	assert.True(t, out.Closed)
	assert.Equal(t, "end", out.Reason)

	w = do(t, h, http.MethodGet, "/interactions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInteractions_StartWithoutBody(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, http.MethodPost, "/projects/proj_docks/interactions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	out := decodeBody[domain.Outcome](t, w)
	assert.NotEmpty(t, out.Interaction.SessionID)

	w = do(t, h, http.MethodPost, "/interactions/"+out.Interaction.SessionID+"/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decodeBody[domain.Outcome](t, w).Reason)

	w = do(t, h, http.MethodPost, "/projects/missing/interactions", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTraverse(t *testing.T) {
	h := newTestHandler()

	g, err := json.Marshal(docks().Data)
	require.NoError(t, err)

	body := `{"graph":` + string(g) + `,"memory":{"honor_level":10}}`
	w := do(t, h, http.MethodPost, "/traverse", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[traverseResponse](t, w)
	assert.True(t, resp.Found)
	assert.Equal(t, "warning", resp.NodeID)
	assert.Equal(t, 3, resp.Steps)

	w = do(t, h, http.MethodPost, "/traverse", `{"graph":{"nodes":[],"connections":[]}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/traverse", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestValidation(t *testing.T) {
	g, err := json.Marshal(docks().Data)
	require.NoError(t, err)
	listMemory := `{"graph":` + string(g) + `,"memory":{"honor_level":60,"inventory":["pistol"]}}`

	h := newTestHandler()

	w := do(t, h, http.MethodPost, "/traverse", listMemory)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decodeBody[errorResponse](t, w).Error, "request body has an error")

	w = do(t, h, http.MethodPost, "/traverse", `{"memory":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "graph is required")

	w = do(t, h, http.MethodPost, "/projects", `{"name":["Harbor"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	do(t, h, http.MethodPost, "/projects/proj_docks/interactions", `{"session_id":"s1"}`)
	w = do(t, h, http.MethodPost, "/interactions/s1/select", `{"node_id":"welcome"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[errorResponse](t, w).Error, "choice_id")

	w = do(t, newTestHandler(WithRequestValidation(false)), http.MethodPost, "/traverse", listMemory)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "welcome", decodeBody[traverseResponse](t, w).NodeID)
}

func TestOpenAPIDocument(t *testing.T) {
	w := do(t, newTestHandler(), http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "openapi: 3.0.3"))
}

func TestPathParamsAreUnescaped(t *testing.T) {
	eng := rcflow.New(rcflow.WithProjectStore(memory.NewProjectStore(docks())))
	h := NewHandler(eng)

	w := do(t, h, http.MethodPost, "/groups", `{"name":"Docks/Night"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = do(t, h, http.MethodGet, "/groups", "")
	require.Contains(t, decodeBody[[]string](t, w), "Docks/Night")

	w = do(t, h, http.MethodDelete, "/groups/Docks%2FNight", "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/groups", "")
	assert.NotContains(t, decodeBody[[]string](t, w), "Docks/Night")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h := newTestHandler(WithGatherer(reg), WithMetrics(m))

	do(t, h, http.MethodGet, "/projects/missing", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `rcflow_http_requests_total{method="GET",route="/projects/{id}`)
	assert.Contains(t, body, `status="404"} 1`)

	w = do(t, newTestHandler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are only served with a gatherer")
}

func TestCORS(t *testing.T) {
	w := do(t, newTestHandler(), http.MethodOptions, "/projects", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	h := newTestHandler(WithCORSOrigins("https://editor.example"))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://editor.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://editor.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("s1")

	hello := Event{Name: "outcome", Data: []byte("hello")}
	assert.Equal(t, 1, sm.Broadcast("s1", hello))
	assert.Equal(t, 0, sm.Broadcast("s2", hello))
	assert.Equal(t, hello, <-ch)

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, sm.Broadcast("s1", hello))
}

func TestSubscribeEvents(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "plain"},
		{name: "behind metrics middleware", opts: []Option{WithMetrics(observability.NewMetrics(prometheus.NewRegistry()))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(newTestHandler(tt.opts...))
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/projects/proj_docks/interactions", "application/json", bytes.NewBufferString(`{"session_id":"s1"}`))
			require.NoError(t, err)
			resp.Body.Close()

			events, err := http.Get(srv.URL + "/interactions/s1/events")
			require.NoError(t, err)
			defer events.Body.Close()
			require.Equal(t, http.StatusOK, events.StatusCode)
			assert.Equal(t, "text/event-stream", events.Header.Get("Content-Type"))

			lines := bufio.NewScanner(events.Body)
			var lastEvent string
			readData := func() string {
				for lines.Scan() {
					if name, ok := strings.CutPrefix(lines.Text(), "event: "); ok {
						lastEvent = name
					}
					if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
						return data
					}
				}
				return ""
			}
			require.Equal(t, "connected", readData())
			assert.Equal(t, "ping", lastEvent)

			resp, err = http.Post(srv.URL+"/interactions/s1/select", "application/json", bytes.NewBufferString(`{"node_id":"welcome","choice_id":"c_job"}`))
			require.NoError(t, err)
			resp.Body.Close()

			var out domain.Outcome
			require.NoError(t, json.Unmarshal([]byte(readData()), &out))
			assert.Equal(t, "outcome", lastEvent)
			assert.Equal(t, "job_offer", out.Interaction.CurrentNodeID)
		})
	}
}
