package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/capmap/pkg/cache"
	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
	"github.com/matzehuels/capmap/pkg/layout"
	"github.com/matzehuels/capmap/pkg/observability"
	"github.com/matzehuels/capmap/pkg/render"
)

const airport = `
Airport = ["Passenger", "Operations"]
Passenger = ["Check-In", "Boarding"]
Operations = ["Ground Handling"]
Check-In = []
Boarding = []
Ground Handling = []
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"vsdx", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetLayoutDefaults()
	o.SetRenderDefaults()

	assert.Equal(t, layout.DefaultConfig(), o.Config)
	assert.Equal(t, hierarchy.DefaultMaxSearchDepth, o.Config.MaxSearchDepth)
	assert.Equal(t, []string{DefaultFormat}, o.Formats)
	assert.Equal(t, render.DefaultMasterName, o.Master)
	assert.NotNil(t, o.Logger)

	// A partially set config is kept as is.
	o = Options{Config: layout.Config{BaseWidth: 2, BaseHeight: 1}}
	o.SetLayoutDefaults()
	assert.Equal(t, 0.0, o.Config.PaddingSize)
	assert.Equal(t, 2.0, o.Config.BaseWidth)
}

func TestValidateForLayout(t *testing.T) {
	o := Options{Config: layout.Config{PaddingSize: -1, BaseWidth: 1, BaseHeight: 1}}
	err := o.ValidateForLayout()
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "error = %v", err)

	o = Options{Config: layout.Config{BaseWidth: 1, BaseHeight: 1, MaxSearchDepth: -1}}
	assert.True(t, errs.Is(o.ValidateForLayout(), errs.ErrCodeInvalidConfig))
}

func TestValidateForRender(t *testing.T) {
	o := Options{Formats: []string{"svg", "gif"}}
	assert.Error(t, o.ValidateForRender())

	o = Options{Scale: -1}
	assert.Error(t, o.ValidateForRender())
}

func TestImport(t *testing.T) {
	h, err := Import(context.Background(), Options{Input: writeInput(t, "airport.toml", airport)})
	require.NoError(t, err)
	assert.Equal(t, 6, h.Len())

	_, err = Import(context.Background(), Options{})
	assert.Error(t, err)

	_, err = Import(context.Background(), Options{Input: writeInput(t, "bad.toml", "A = []\nB = []\n")})
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedHierarchy), "error = %v", err)
}

func TestImportUsesConfigSearchDepth(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "n%d = [\"n%d\"]\n", i, i+1)
	}
	b.WriteString("n12 = []\n")
	input := writeInput(t, "chain.toml", b.String())

	_, _, err := ComputeLayout(context.Background(), mustImport(t, Options{Input: input}), Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeDepthExceeded), "error = %v", err)

	cfg := layout.DefaultConfig()
	cfg.PaddingSize = 0.05
	cfg.MaxSearchDepth = 20
	opts := Options{Input: input, Config: cfg}
	h := mustImport(t, opts)
	assert.Equal(t, 20, h.MaxSearchDepth())

	doc, _, err := ComputeLayout(context.Background(), h, opts)
	require.NoError(t, err)
	assert.Len(t, doc.Shapes, 13)
}

func mustImport(t *testing.T, opts Options) *hierarchy.Hierarchy {
	t.Helper()
	h, err := Import(context.Background(), opts)
	require.NoError(t, err)
	return h
}

func TestHashHierarchy(t *testing.T) {
	a, _ := hierarchy.FromEntries([]hierarchy.Entry{{ID: "A", Children: []string{"B"}}, {ID: "B"}})
	b, _ := hierarchy.FromEntries([]hierarchy.Entry{{ID: "A", Children: []string{"B"}}, {ID: "B"}})
	c, _ := hierarchy.FromEntries([]hierarchy.Entry{{ID: "B"}, {ID: "A", Children: []string{"B"}}})
	d, _ := hierarchy.FromEntries([]hierarchy.Entry{{ID: "A", Children: []string{"B"}}, {ID: "B"}}, hierarchy.WithMaxSearchDepth(3))

	assert.Equal(t, HashHierarchy(a), HashHierarchy(b))
	assert.NotEqual(t, HashHierarchy(a), HashHierarchy(c), "key order changes ranks")
	assert.NotEqual(t, HashHierarchy(a), HashHierarchy(d))
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(fc, nil, log.NewWithOptions(&strings.Builder{}, log.Options{}))
	defer r.Close()

	opts := Options{
		Input:   writeInput(t, "airport.toml", airport),
		Title:   "Airport",
		Formats: []string{"svg", "json", "dot"},
	}

	first, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.LayoutHit)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Equal(t, 6, first.Stats.NodeCount)
	assert.Len(t, first.Document.Shapes, 6)
	assert.Equal(t, "Airport", first.Document.Title)
	require.Len(t, first.Artifacts, 3)
	assert.True(t, strings.HasPrefix(string(first.Artifacts["svg"]), "<svg"))
	assert.True(t, strings.HasPrefix(string(first.Artifacts["dot"]), "graph capmap"))

	second, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.LayoutHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.HierarchyHash, second.HierarchyHash)
	assert.Equal(t, first.Artifacts["svg"], second.Artifacts["svg"])

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.LayoutHit)
	assert.False(t, third.CacheInfo.RenderHit)
}

func TestExecuteConfigChangesKey(t *testing.T) {
	ctx := context.Background()
	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, nil)

	opts := Options{Input: writeInput(t, "airport.toml", airport), Formats: []string{"json"}}
	_, err := r.Execute(ctx, opts)
	require.NoError(t, err)

	opts.Config = layout.DefaultConfig()
	opts.Config.PaddingSize = 0.2
	res, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.LayoutHit)
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{Input: "x.toml", Formats: []string{"gif"}})
	assert.ErrorContains(t, err, "invalid options")

	_, err = r.Execute(ctx, Options{Input: writeInput(t, "ghost.yaml", "A: [ghost]\n")})
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedHierarchy), "error = %v", err)

	_, err = r.Execute(ctx, Options{Input: writeInput(t, "airport.toml", airport), Stencil: "missing.toml"})
	assert.ErrorContains(t, err, "missing.toml")
}

func TestRenderWithStencil(t *testing.T) {
	ctx := context.Background()
	h, err := hierarchy.FromEntries([]hierarchy.Entry{{ID: "A", Children: []string{"B"}}, {ID: "B"}})
	require.NoError(t, err)

	stencil := writeInput(t, "stencil.toml", "name = \"dark\"\n\n[masters.Capability]\nfill = \"#222222\"\n")
	r := NewRunner(nil, nil, nil)
	doc, err := r.Layout(ctx, h, Options{})
	require.NoError(t, err)

	out, err := r.Render(ctx, doc, Options{Stencil: stencil})
	require.NoError(t, err)
	assert.Contains(t, string(out["svg"]), `fill="#222222"`)

	_, err = r.Render(ctx, doc, Options{Stencil: stencil, Master: "Group"})
	assert.True(t, errs.Is(err, errs.ErrCodeRenderFailed), "error = %v", err)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _, depth int, _ time.Duration, err error) {
	h.add(fmt.Sprintf("layout:%d", depth))
}
func (h *recordingHooks) OnRenderComplete(_ context.Context, f []string, _ time.Duration, err error) {
	h.add("render")
}
func (h *recordingHooks) OnCacheHit(_ context.Context, kind string)  { h.add("hit:" + kind) }
func (h *recordingHooks) OnCacheMiss(_ context.Context, kind string) { h.add("miss:" + kind) }

func TestHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, nil)
	opts := Options{Input: writeInput(t, "airport.toml", airport), Formats: []string{"json"}}
	for range 2 {
		_, err := r.Execute(context.Background(), opts)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"miss:layout", "layout:2", "miss:artifact", "render", "hit:layout", "hit:artifact"}, hooks.events)
}
