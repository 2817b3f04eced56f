package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/docblocks/internal/preview"
)

func TestObserverCountsMessages(t *testing.T) {
	m := New()
	obs := m.Observer()

	obs.Dispatched(preview.ToggleSource{Expanded: true})
	obs.Dispatched(preview.ZoomBy{Multiplier: 0.8})
	obs.Dispatched(preview.ZoomBy{Multiplier: 1.25})
	obs.Dispatched(preview.ResetZoom{})
	obs.ToolbarSuppressed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatched.WithLabelValues("toggle_source")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dispatched.WithLabelValues("zoom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatched.WithLabelValues("reset_zoom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolbarSuppressed))
}

func TestObserverWiredIntoPreview(t *testing.T) {
	m := New()
	p := preview.New(preview.Config{
		WithToolbar: true,
		Children:    preview.NewChildren(),
	}, preview.WithObserver(m.Observer()))

	p.Update(preview.ZoomBy{Multiplier: 2})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatched.WithLabelValues("zoom")))
}

func TestOutcomes(t *testing.T) {
	m := New()

	m.ObservePage(nil)
	m.ObservePage(errors.New("boom"))
	m.ObserveReload(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageRenders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageRenders.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reloads.WithLabelValues("ok")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Instances.Set(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "docblocks_preview_instances 3")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestKindUnknown(t *testing.T) {
	assert.Equal(t, "unknown", Kind(nil))
}
