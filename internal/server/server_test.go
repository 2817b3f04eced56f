package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/logging"
	"github.com/conneroisu/docblocks/internal/preview"
	"github.com/conneroisu/docblocks/internal/testutils"
)

const manifest = `
stories:
  - id: button--primary
    title: Primary
    html: <button class="btn">OK</button>
    description: The **primary** button.
    source:
      code: <Button variant="primary"/>
      language: templ
  - id: button--secondary
    html: <button class="btn">Cancel</button>
pages:
  - id: buttons
    title: Buttons
    description: All the buttons.
    blocks:
      - stories: [button--primary]
        with_toolbar: true
        show_source: true
      - stories: [button--primary, button--secondary]
        with_toolbar: true
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := testutils.CreateTempProject(t)
	path := testutils.WriteFile(t, dir, "docblocks.yml", manifest)

	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Docs:   config.DocsConfig{Manifest: path},
		Preview: config.PreviewConfig{
			ToolbarBaseURL: config.DefaultCanvasURL,
			ZoomInStep:     config.DefaultZoomInStep,
			ZoomOutStep:    config.DefaultZoomOutStep,
			MaxInstances:   config.DefaultMaxInstances,
		},
		Log: config.LogConfig{Level: "debug", Format: "text"},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, *logging.Recorder) {
	t.Helper()
	rec := logging.NewRecorder()
	s := New(testConfig(t), rec)
	require.NoError(t, s.Load(context.Background()))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, ts, rec
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func previewIDs(t *testing.T, markup string) []string {
	t.Helper()
	var ids []string
	for _, n := range testutils.ByClass(testutils.Parse(t, markup), "docblock-preview") {
		id, ok := testutils.Attr(n, "data-preview-id")
		require.True(t, ok)
		ids = append(ids, id)
	}
	return ids
}

func TestIndex(t *testing.T) {
	_, ts, _ := newTestServer(t)

	status, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<a href="/docs/buttons">Buttons</a>`)
	assert.Contains(t, body, `href="/iframe.html?id=button--primary"`)
	assert.Contains(t, body, "Button / Secondary")

	status, _ = get(t, ts.URL+"/nothing-here")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPage(t *testing.T) {
	s, ts, rec := newTestServer(t)

	status, body := get(t, ts.URL+"/docs/buttons")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "<title>Buttons</title>")
	assert.Contains(t, body, "All the buttons.")
	assert.Len(t, previewIDs(t, body), 2)
	assert.Equal(t, 2, s.Store().Count())

	doc := testutils.Parse(t, body)
	assert.Len(t, testutils.ByClass(doc, "docblock-toolbar"), 1, "the two-story block drops its toolbar")
	assert.Len(t, testutils.ByClass(doc, "docblock-canvas-link"), 1)

	warned := false
	for _, e := range rec.Entries() {
		if e.Level == logging.LevelWarn && e.Component == "preview" {
			warned = true
		}
	}
	assert.True(t, warned)

	status, _ = get(t, ts.URL+"/docs/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestActions(t *testing.T) {
	s, ts, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/docs/buttons")
	ids := previewIDs(t, body)
	require.Len(t, ids, 2)
	single, many := ids[0], ids[1]

	status, fragment := post(t, ts.URL+"/preview/"+single+"/source")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, fragment, preview.TitleHideCode)
	assert.Contains(t, fragment, "&lt;Button variant=")
	assert.Equal(t, []string{single}, previewIDs(t, fragment))

	status, _ = post(t, ts.URL+"/preview/"+single+"/zoom-in")
	require.Equal(t, http.StatusOK, status)
	p, ok := s.Store().Get(single)
	require.True(t, ok)
	assert.InDelta(t, 0.8, p.Scale(), 1e-12)

	status, _ = post(t, ts.URL+"/preview/"+many+"/zoom-in")
	assert.Equal(t, http.StatusNotFound, status, "suppressed toolbar has no zoom control")

	status, _ = post(t, ts.URL+"/preview/"+single+"/explode")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, ts.URL+"/preview/unknown/source")
	assert.Equal(t, http.StatusNotFound, status)

	resp, err := http.Get(ts.URL + "/preview/" + single + "/source")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCanvas(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/iframe.html?id=button--primary")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.Contains(t, string(body), `<button class="btn">OK</button>`)
	assert.Contains(t, string(body), "<strong>primary</strong>")

	status, _ := get(t, ts.URL+"/iframe.html?id=ghost")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)

	status, body := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, status)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "healthy", health["status"])
	checks := health["checks"].(map[string]interface{})
	registry := checks["registry"].(map[string]interface{})
	assert.Equal(t, 2.0, registry["stories"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/docs/buttons")
	id := previewIDs(t, body)[0]
	post(t, ts.URL+"/preview/"+id+"/source")

	status, metrics := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, metrics, `docblocks_preview_events_total{kind="toggle_source"} 1`)
	assert.Contains(t, metrics, `docblocks_page_renders_total{outcome="ok"} 1`)
	assert.Contains(t, metrics, "docblocks_toolbar_suppressed_total")
	assert.Contains(t, metrics, "docblocks_preview_instances 2")
}

func TestReloadDropsInstancesAndNotifies(t *testing.T) {
	s, ts, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	get(t, ts.URL+"/docs/buttons")
	require.Equal(t, 2, s.Store().Count())

	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 0, s.Store().Count())

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"reload"`)
}

func TestLoadFailure(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Docs.Manifest, []byte("stories: ["), 0o644))

	rec := logging.NewRecorder()
	s := New(cfg, rec)
	defer s.Shutdown(context.Background())

	assert.Error(t, s.Load(context.Background()))
	assert.Equal(t, 1, rec.Count(logging.LevelWarn))
}

func TestStartAndStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Docs.Watch = true
	s := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.Registry().Count() == 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.AllowedOrigins = []string{"http://docs.example.test"}
	s := New(cfg, nil)
	require.NoError(t, s.Load(context.Background()))
	defer s.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodOptions, "/preview/x/source", nil)
	req.Header.Set("Origin", "http://docs.example.test")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://docs.example.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
