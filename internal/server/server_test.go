package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/model"
	"github.com/ppiankov/arrestflow/internal/pipeline"
	"github.com/ppiankov/arrestflow/internal/render"
	"github.com/ppiankov/arrestflow/internal/rules"
	"github.com/ppiankov/arrestflow/internal/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mutate func(*model.ServerConfig)) *Server {
	t.Helper()
	cfg := model.DefaultConfig().Server
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	if mutate != nil {
		mutate(&cfg)
	}
	p := pipeline.New(rules.CriminalCode(), nil, render.DefaultOptions())
	return New(p, cfg, nil)
}

func performRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, nil)
	w := performRequest(s, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var body struct {
		Status string `json:"status"`
		Graph  string `json:"graph"`
		Nodes  int    `json:"nodes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Nodes != len(rules.CriminalCode().Nodes) || body.Graph == "" {
		t.Errorf("unexpected health body: %+v", body)
	}
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(t, nil)
	w := performRequest(s, http.MethodGet, "/?arrestingPerson=police", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	out := w.Body.String()

	for _, want := range []string{
		"<svg",
		`name="arrestingPerson" value="police" checked`,
		`name="prev" value="arrestingPerson=police"`,
		"Police officer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, "<?xml") {
		t.Error("inline svg should not carry an XML prolog")
	}
}

func TestServer_Index_BadFacts(t *testing.T) {
	s := newTestServer(t, nil)
	w := performRequest(s, http.MethodGet, "/?arrestingPerson=judge", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestServer_Click(t *testing.T) {
	tests := []struct {
		desc     string
		query    string
		location string
	}{
		{
			desc:     "select person",
			query:    "prev=&field=arrestingPerson&value=police&arrestingPerson=police",
			location: "/?arrestingPerson=police",
		},
		{
			desc:     "click checked person clears it",
			query:    "prev=arrestingPerson%3Dpolice&field=arrestingPerson&value=police&arrestingPerson=police",
			location: "/",
		},
		{
			desc:     "add warrant keeps person",
			query:    "prev=arrestingPerson%3Dpolice&field=warrant&value=true&arrestingPerson=police&warrant=true",
			location: "/?arrestingPerson=police&warrant=true",
		},
		{
			desc:     "switch category",
			query:    "prev=offenceCategory%3Ds469&field=offenceCategory&value=hybrid&offenceCategory=hybrid",
			location: "/?offenceCategory=hybrid",
		},
		{
			desc:     "form without a click",
			query:    "arrestingPerson=citizen&warrant=false",
			location: "/?arrestingPerson=citizen&warrant=false",
		},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			w := performRequest(s, http.MethodGet, "/click?"+tt.query, nil)
			if w.Code != http.StatusSeeOther {
				t.Fatalf("status %d: %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}

func TestServer_Click_Invalid(t *testing.T) {
	s := newTestServer(t, nil)
	for _, q := range []string{
		"field=colour&value=red",
		"field=arrestingPerson&value=judge&arrestingPerson=judge",
		"prev=arrestingPerson%3Djudge&field=warrant&value=true",
	} {
		w := performRequest(s, http.MethodGet, "/click?"+q, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestServer_Select(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodGet, "/select/"+rules.NodeCitizenArresting+"?warrant=false", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/?arrestingPerson=citizen&warrant=false" {
		t.Errorf("Location = %q", got)
	}

	w = performRequest(s, http.MethodGet, "/select/"+rules.NodeCitizenArresting+"?arrestingPerson=citizen", nil)
	if got := w.Header().Get("Location"); got != "/" {
		t.Errorf("second click should clear the fact, Location = %q", got)
	}

	if w := performRequest(s, http.MethodGet, "/select/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown node: expected 404, got %d", w.Code)
	}
	if w := performRequest(s, http.MethodGet, "/select/"+rules.NodeWhoArresting, nil); w.Code != http.StatusBadRequest {
		t.Errorf("plain node: expected 400, got %d", w.Code)
	}
}

func TestServer_Graph(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodGet, "/graph/json?arrestingPerson=police", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	w = performRequest(s, http.MethodGet, "/graph/mermaid", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "flowchart TD") {
		t.Errorf("mermaid: %d %q", w.Code, w.Body.String())
	}

	if w := performRequest(s, http.MethodGet, "/graph/gif", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown format: expected 404, got %d", w.Code)
	}
}

func TestServer_Graph_RateLimited(t *testing.T) {
	s := newTestServer(t, func(c *model.ServerConfig) {
		c.RequestsPerSecond = 0.001
		c.Burst = 1
	})

	if w := performRequest(s, http.MethodGet, "/graph/text", nil); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	if w := performRequest(s, http.MethodGet, "/graph/text", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", w.Code)
	}
	// other endpoints are not limited
	if w := performRequest(s, http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("healthz: %d", w.Code)
	}
}

func TestServer_Graph_TrustedClientNotLimited(t *testing.T) {
	// httptest requests come from 192.0.2.1
	s := newTestServer(t, func(c *model.ServerConfig) {
		c.RequestsPerSecond = 0.001
		c.Burst = 1
		c.TrustedClients = []string{"192.0.2.1"}
	})

	for i := 0; i < 5; i++ {
		if w := performRequest(s, http.MethodGet, "/graph/text", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d from a trusted client: %d", i, w.Code)
		}
	}
}

func TestServer_APIView(t *testing.T) {
	s := newTestServer(t, nil)
	w := performRequest(s, http.MethodGet, "/api/view?arrestingPerson=police", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var v view.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.Facts.ArrestingPerson != facts.PersonPolice {
		t.Errorf("facts = %s", v.Facts)
	}
	for _, n := range v.Nodes {
		if n.ID == rules.NodeCitizenArresting && n.Relevant {
			t.Error("citizen branch should be irrelevant for a police arrest")
		}
	}
}

func TestServer_APIReduce(t *testing.T) {
	s := newTestServer(t, nil)

	body := map[string]any{
		"facts": map[string]any{"arrestingPerson": "police", "warrant": nil, "offenceCategory": nil},
		"field": "warrant",
		"value": "false",
	}
	w := performRequest(s, http.MethodPost, "/api/reduce", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Facts    facts.Facts `json:"facts"`
		Relevant []string    `json:"relevant"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := facts.Facts{ArrestingPerson: facts.PersonPolice, Warrant: facts.WarrantNo}
	if resp.Facts != want {
		t.Errorf("facts = %s, want %s", resp.Facts, want)
	}
	if len(resp.Relevant) == 0 {
		t.Error("expected relevant nodes")
	}
}

func TestServer_APIReduce_ExplicitForm(t *testing.T) {
	s := newTestServer(t, nil)

	body := map[string]any{
		"facts": map[string]any{"offenceCategory": "s469"},
		"field": "offenceCategory",
		"value": "s469",
		"form":  map[string]string{"offenceCategory": "s469", "arrestingPerson": "citizen"},
	}
	w := performRequest(s, http.MethodPost, "/api/reduce", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Facts facts.Facts `json:"facts"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	want := facts.Facts{ArrestingPerson: facts.PersonCitizen}
	if resp.Facts != want {
		t.Errorf("facts = %s, want %s", resp.Facts, want)
	}
}

func TestServer_APIReduce_Invalid(t *testing.T) {
	s := newTestServer(t, nil)
	for _, body := range []map[string]any{
		{"value": "police"},
		{"field": "colour", "value": "red"},
		{"field": "arrestingPerson", "value": "judge"},
		{"field": "warrant", "value": "true", "form": map[string]string{"colour": "red"}},
	} {
		if w := performRequest(s, http.MethodPost, "/api/reduce", body); w.Code != http.StatusBadRequest {
			t.Errorf("%v: expected 400, got %d", body, w.Code)
		}
	}
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, nil)
	performRequest(s, http.MethodGet, "/healthz", nil)

	w := performRequest(s, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "arrestflow_http_requests_total") {
		t.Error("metrics output missing request counter")
	}
}

func TestNodeLink(t *testing.T) {
	current := facts.Facts{Warrant: facts.WarrantYes}
	sel := &facts.Interaction{Field: facts.FieldArrestingPerson, Value: "police"}

	if got := NodeLink(view.NodeView{ID: "policeArresting", Select: sel}, current); got != "/select/policeArresting?warrant=true" {
		t.Errorf("NodeLink = %q", got)
	}
	if got := NodeLink(view.NodeView{ID: "whoArresting"}, current); got != "" {
		t.Errorf("expected no link for a plain node, got %q", got)
	}
}
