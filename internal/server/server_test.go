package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/capmap/pkg/buildinfo"
	"github.com/matzehuels/capmap/pkg/cache"
	"github.com/matzehuels/capmap/pkg/document"
	"github.com/matzehuels/capmap/pkg/observability"
	"github.com/matzehuels/capmap/pkg/pipeline"
)

const sampleRequest = `{
  "hierarchy": {"A": ["B", "C"], "B": [], "C": []},
  "options": {
    "config": {"padding_size": 10, "max_depth": 1, "base_width": 100, "base_height": 50, "start_y": 5},
    "title": "Sample"
  }
}`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(fc, nil, log.NewWithOptions(io.Discard, log.Options{}))
	ts := httptest.NewServer(New(runner, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeErrorResponse(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(headerRequestID))
	assert.NoError(t, err, "request id header")

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, buildinfo.Version, body["version"])
}

func TestRequestIDPropagates(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(headerRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(headerRequestID))

	// Anything that is not a UUID is replaced.
	req.Header.Set(headerRequestID, "<script>")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.NotEqual(t, "<script>", resp2.Header.Get(headerRequestID))
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/layout", sampleRequest)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get(headerCache))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc, err := document.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, "Sample", doc.Title)
	require.Len(t, doc.Shapes, 3)
	assert.Equal(t, document.Shape{ID: "A", Label: "A", X: -10, Y: 5, Width: 180, Height: 70}, doc.Shapes[0])
	assert.Equal(t, document.Shape{ID: "C", Label: "C", Level: 1, Rank: 1, Parent: "A", X: 120, Y: 5, Width: 100, Height: 50}, doc.Shapes[2])

	again := post(t, ts.URL+"/v1/layout", sampleRequest)
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, "hit", again.Header.Get(headerCache))
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"hierarchy": {"A": []}, "stencil": "/etc/passwd"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no hierarchy", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"two roots", `{"hierarchy": {"A": ["B"], "B": [], "X": []}}`, http.StatusUnprocessableEntity, "MALFORMED_HIERARCHY"},
		{"dangling child", `{"hierarchy": {"A": ["ghost"]}}`, http.StatusUnprocessableEntity, "MALFORMED_HIERARCHY"},
		{"bad config", `{"hierarchy": {"A": []}, "options": {"config": {"base_width": -1, "base_height": 1}}}`, http.StatusBadRequest, "INVALID_CONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/layout", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decodeErrorResponse(t, resp)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
			assert.Equal(t, resp.Header.Get(headerRequestID), e.RequestID)
		})
	}
}

// chainRequest lays out n0..n(n-1), each the only child of the one before.
func chainRequest(n int, config string) string {
	var b strings.Builder
	b.WriteString(`{"hierarchy": {`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if i+1 < n {
			fmt.Fprintf(&b, `"n%d": ["n%d"]`, i, i+1)
		} else {
			fmt.Fprintf(&b, `"n%d": []`, i)
		}
	}
	fmt.Fprintf(&b, `}, "options": {"config": %s}}`, config)
	return b.String()
}

func TestLayoutSearchDepth(t *testing.T) {
	ts := newTestServer(t)
	const sizes = `"padding_size": 1, "base_width": 100, "base_height": 50`

	shallow := post(t, ts.URL+"/v1/layout", chainRequest(13, `{`+sizes+`}`))
	assert.Equal(t, http.StatusUnprocessableEntity, shallow.StatusCode)
	assert.Equal(t, "DEPTH_EXCEEDED", decodeErrorResponse(t, shallow).Code)

	deep := post(t, ts.URL+"/v1/layout", chainRequest(13, `{`+sizes+`, "max_search_depth": 20}`))
	require.Equal(t, http.StatusOK, deep.StatusCode)
	var doc document.Document
	require.NoError(t, json.NewDecoder(deep.Body).Decode(&doc))
	require.Len(t, doc.Shapes, 13)
	assert.Equal(t, 12, doc.Shapes[12].Level)
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/render", sampleRequest)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(body), "<svg"), "body = %.60s", body)

	small := strings.Replace(sampleRequest, `"title": "Sample"`, `"title": "Sample", "scale": 1`, 1)
	png := post(t, ts.URL+"/v1/render?format=PNG", small)
	require.Equal(t, http.StatusOK, png.StatusCode)
	assert.Equal(t, "image/png", png.Header.Get("Content-Type"))

	bad := post(t, ts.URL+"/v1/render?format=gif", sampleRequest)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.Equal(t, "INVALID_FORMAT", decodeErrorResponse(t, bad).Code)
}

func TestVisualize(t *testing.T) {
	ts := newTestServer(t)

	layout := post(t, ts.URL+"/v1/layout", sampleRequest)
	require.Equal(t, http.StatusOK, layout.StatusCode)
	doc, _ := io.ReadAll(layout.Body)

	resp := post(t, ts.URL+"/v1/visualize?format=dot", string(doc))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "graph capmap {")
	assert.Contains(t, string(body), "n0 -- n1;")

	unknown := post(t, ts.URL+"/v1/visualize?master=Process", string(doc))
	assert.Equal(t, http.StatusInternalServerError, unknown.StatusCode)
	assert.Equal(t, "RENDER_FAILED", decodeErrorResponse(t, unknown).Code)

	invalid := post(t, ts.URL+"/v1/visualize", `{"shapes": []}`)
	assert.Equal(t, http.StatusBadRequest, invalid.StatusCode)
}

func TestDrawingsNotConfigured(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/drawings/airport")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	save := post(t, ts.URL+"/v1/render?save=airport", sampleRequest)
	assert.Equal(t, http.StatusBadRequest, save.StatusCode)
}

func TestDrawings(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save", func(mt *mtest.T) {
		ts := newTestServer(mt.T, WithDrawings(mt.Coll))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		resp := post(mt.T, ts.URL+"/v1/render?save=airport", sampleRequest)
		require.Equal(mt, http.StatusOK, resp.StatusCode)
		assert.Equal(mt, "/v1/drawings/airport", resp.Header.Get("Location"))
	})

	mt.Run("bad name", func(mt *mtest.T) {
		ts := newTestServer(mt.T, WithDrawings(mt.Coll))

		resp := post(mt.T, ts.URL+"/v1/render?save=../airport", sampleRequest)
		assert.Equal(mt, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(mt, "INVALID_PATH", decodeErrorResponse(mt.T, resp).Code)
	})

	mt.Run("load missing", func(mt *mtest.T) {
		ts := newTestServer(mt.T, WithDrawings(mt.Coll))
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		resp, err := http.Get(ts.URL + "/v1/drawings/nowhere")
		require.NoError(mt, err)
		defer resp.Body.Close()
		assert.Equal(mt, http.StatusNotFound, resp.StatusCode)
	})
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) OnResponse(_ context.Context, method, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, method+" "+path+" "+http.StatusText(status))
}

func TestHTTPHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	post(t, ts.URL+"/v1/layout", `{`)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"GET /healthz OK", "POST /v1/layout Bad Request"}, rec.events)
}
