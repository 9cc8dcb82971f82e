package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tromp/pkg/cache"
	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/observability"
	"github.com/matzehuels/tromp/pkg/pipeline"
)

func newTestServer(t *testing.T, withMetrics bool) *httptest.Server {
	t.Helper()
	opts := Options{Runner: pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)}
	if withMetrics {
		opts.Metrics = NewMetrics()
		t.Cleanup(observability.Reset)
	}
	ts := httptest.NewServer(New(opts))
	t.Cleanup(ts.Close)
	return ts
}

func postRender(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("/healthz = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("response should carry a request id")
	}

	resp, err = http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var info map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info["version"] == "" {
		t.Errorf("version missing: %v", info)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, false)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestPostRender(t *testing.T) {
	ts := newTestServer(t, false)

	resp, data := postRender(t, ts, `{"expression": "λx.λy.x", "formats": ["txt", "svg"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}

	var got RenderResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID == "" {
		t.Error("response id missing")
	}
	if got.Term != "λλ2" {
		t.Errorf("term = %q, want λλ2", got.Term)
	}
	want := "...\n . \n...\n . \n . \n . \n"
	if diff := cmp.Diff(want, string(got.Artifacts["txt"])); diff != "" {
		t.Errorf("txt artifact mismatch (-want +got):\n%s", diff)
	}
	if !bytes.HasPrefix(got.Artifacts["svg"], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", got.Artifacts["svg"])
	}
	if got.Stats.Width != 3 || got.Stats.Height != 6 {
		t.Errorf("stats = %+v", got.Stats)
	}

	_, data = postRender(t, ts, `{"expression": "λλ2", "notation": "debruijn", "formats": ["txt", "svg"]}`)
	var again RenderResponse
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatal(err)
	}
	if !again.Cache.LayoutHit || !again.Cache.RenderHit {
		t.Errorf("equivalent term should be served from cache: %+v", again.Cache)
	}
}

func TestPostRenderErrors(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   errors.Code
	}{
		{"bad json", `{`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"expr": "λx.x"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty expression", `{"expression": ""}`, http.StatusBadRequest, errors.ErrCodeInvalidExpression},
		{"syntax", `{"expression": "λx x"}`, http.StatusBadRequest, errors.ErrCodeInvalidExpression},
		{"free variable", `{"expression": "λx.y"}`, http.StatusUnprocessableEntity, errors.ErrCodeFreeVariable},
		{"bad notation", `{"expression": "λ1", "notation": "ski"}`, http.StatusBadRequest, errors.ErrCodeInvalidNotation},
		{"bad placement", `{"expression": "λ1", "notation": "db", "placement": "zigzag"}`, http.StatusBadRequest, errors.ErrCodeInvalidPlacement},
		{"unsupported", `{"expression": "λx.x", "viz_type": "tree", "formats": ["txt"]}`, http.StatusBadRequest, errors.ErrCodeUnsupported},
		{"cell size too large", `{"expression": "λx.x", "formats": ["svg"], "cell_size": 1e300}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"scale too large", `{"expression": "λx.x", "formats": ["png"], "scale": 17}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := postRender(t, ts, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, data)
			}
			var e ErrorResponse
			if err := json.Unmarshal(data, &e); err != nil {
				t.Fatalf("error body is not JSON: %s", data)
			}
			if e.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", e.Code, tt.wantCode)
			}
			if e.Message == "" || e.RequestID == "" {
				t.Errorf("incomplete error body: %+v", e)
			}
		})
	}
}

func TestGetRenderFormat(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		contentType string
		prefix      string
	}{
		{"txt", "/v1/render.txt?expr=%CE%BB1&notation=debruijn", http.StatusOK, "text/plain; charset=utf-8", "...\n . \n . \n . \n"},
		{"svg", "/v1/render.svg?fixture=omega", http.StatusOK, "image/svg+xml", "<svg"},
		{"json", "/v1/render.json?fixture=K&placement=traced", http.StatusOK, "application/json", "{"},
		{"dot", "/v1/render.dot?fixture=I&viz_type=tree", http.StatusOK, "text/vnd.graphviz; charset=utf-8", "digraph"},
		{"unknown fixture", "/v1/render.txt?fixture=nope", http.StatusNotFound, "application/json", "{"},
		{"bad format", "/v1/render.gif?fixture=I", http.StatusBadRequest, "application/json", "{"},
		{"bad cell size", "/v1/render.svg?fixture=I&cell_size=big", http.StatusBadRequest, "application/json", "{"},
		{"infinite cell size", "/v1/render.svg?expr=%CE%BBx.x&cell_size=Inf", http.StatusBadRequest, "application/json", "{"},
		{"huge cell size", "/v1/render.svg?expr=%CE%BBx.x&cell_size=1e300", http.StatusBadRequest, "application/json", "{"},
		{"nan scale", "/v1/render.png?fixture=I&scale=NaN", http.StatusBadRequest, "application/json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.HasPrefix(string(body), tt.prefix) {
				t.Errorf("body = %.60q, want prefix %q", body, tt.prefix)
			}
		})
	}
}

func TestFixtures(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/v1/fixtures")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []Fixture
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("no fixtures")
	}
	if got[0].Name != "I" || got[0].DeBruijn != "λ1" || got[0].Classic != "λa.a" {
		t.Errorf("first fixture = %+v", got[0])
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/v2/nothing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, true)

	postRender(t, ts, `{"expression": "λx.x"}`)
	postRender(t, ts, `{"expression": "λx.y"}`)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`tromp_pipeline_stage_total{outcome="ok",stage="parse",variant="classic"} 2`,
		`tromp_pipeline_stage_total{outcome="error",stage="layout",variant="tromp"} 1`,
		`tromp_cache_events_total{event="miss",key_type="layout"} 2`,
		`tromp_http_requests_total{method="POST",route="/v1/render",status="422"} 1`,
		`tromp_http_errors_total{method="POST",route="/v1/render"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}
