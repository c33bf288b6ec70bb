package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/capmap/pkg/cache"
	"github.com/matzehuels/capmap/pkg/document"
	errs "github.com/matzehuels/capmap/pkg/errors"
	capio "github.com/matzehuels/capmap/pkg/io"
	"github.com/matzehuels/capmap/pkg/pipeline"
)

const sampleTOML = `
A = ["B", "C"]
B = []
C = []
`

var sampleFlags = []string{
	"--padding", "10", "--base-width", "100", "--base-height", "50",
	"--start-y", "5", "--max-depth", "1",
}

// execute runs the root command with an isolated cache directory.
func execute(t *testing.T, args ...string) error {
	_, err := executeOutput(t, args...)
	return err
}

// executeOutput is execute that also returns the status output.
func executeOutput(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedis, "")

	var buf bytes.Buffer
	prev := out
	out = &buf
	defer func() { out = prev }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)

	output, err := executeOutput(t, append([]string{"layout", input, "--title", "Sample"}, sampleFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, output, "Layout complete")
	assert.Contains(t, output, "3 nodes")
	assert.Contains(t, output, "depth 1")

	doc, err := document.ReadFile(filepath.Join(dir, "sample.layout.json"))
	require.NoError(t, err)
	assert.Equal(t, "Sample", doc.Title)
	require.Len(t, doc.Shapes, 3)
	assert.Equal(t, document.Shape{ID: "A", Label: "A", X: -10, Y: 5, Width: 180, Height: 70}, doc.Shapes[0])
	assert.Equal(t, document.Shape{ID: "C", Label: "C", Level: 1, Rank: 1, Parent: "A", X: 120, Y: 5, Width: 100, Height: 50}, doc.Shapes[2])
}

func TestLayoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)
	config := writeFile(t, dir, "capmap.toml", `
title = "From File"

[layout]
padding_size = 3
max_depth = 1
base_width = 100
base_height = 50
start_y = 5
`)
	out := filepath.Join(dir, "out.json")

	require.NoError(t, execute(t, "layout", input, "--config", config, "--padding", "10", "-o", out))

	doc, err := document.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "From File", doc.Title)
	assert.Equal(t, 10.0, doc.Config.PaddingSize, "flag wins over file")
	assert.Equal(t, 100.0, doc.Config.BaseWidth)
	assert.Equal(t, 180.0, doc.Shapes[0].Width)
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)

	err := execute(t, "layout", input, "--base-width", "-1")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "got %v", err)

	bad := writeFile(t, dir, "bad.toml", "A = [\"ghost\"]\n")
	err = execute(t, "layout", bad)
	assert.True(t, errs.Is(err, errs.ErrCodeMalformedHierarchy), "got %v", err)

	missing := writeFile(t, dir, "config.toml", "[layout]\nbase_width = \"wide\"\n")
	err = execute(t, "layout", input, "--config", missing)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig), "got %v", err)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.json", `{"A": ["B", "C"], "B": [], "C": []}`)
	original, err := os.ReadFile(input)
	require.NoError(t, err)

	base := filepath.Join(dir, "out", "sample")
	require.NoError(t, execute(t, "render", input, "-f", "svg, JSON", "--no-cache", "-o", base))
	assert.FileExists(t, base+".svg")
	assert.FileExists(t, base+".json")

	require.NoError(t, execute(t, "render", input, "-f", "json", "--no-cache"))
	assert.FileExists(t, filepath.Join(dir, "sample.drawing.json"))
	after, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, original, after, "input must not be overwritten")

	err = execute(t, "render", input, "-f", "gif")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat), "got %v", err)
}

func TestVisualizeCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)
	require.NoError(t, execute(t, append([]string{"layout", input}, sampleFlags...)...))

	layoutPath := filepath.Join(dir, "sample.layout.json")
	require.NoError(t, execute(t, "visualize", layoutPath, "-f", "dot"))

	data, err := os.ReadFile(filepath.Join(dir, "sample.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "graph capmap {")

	err = execute(t, "visualize", layoutPath, "--master", "Process")
	assert.True(t, errs.Is(err, errs.ErrCodeRenderFailed), "got %v", err)
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)
	out := filepath.Join(dir, "sample.yaml")

	require.NoError(t, execute(t, "convert", input, out))

	h, err := capio.Import(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, h.Keys())

	bad := writeFile(t, dir, "bad.toml", "A = [\"ghost\"]\n")
	assert.Error(t, execute(t, "convert", bad, filepath.Join(dir, "bad.yaml")))
	assert.NoError(t, execute(t, "convert", bad, filepath.Join(dir, "bad.yaml"), "--no-validate"))
}

func TestInspectPlain(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)

	output, err := executeOutput(t, "inspect", input, "--plain")
	require.NoError(t, err)
	for _, name := range []string{"A", "B", "C"} {
		assert.Contains(t, output, name)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sample.toml", sampleTOML)

	output, err := executeOutput(t, "cache", "path")
	require.NoError(t, err)
	assert.Contains(t, output, appName)

	// Each execute gets a fresh cache, so fill and inspect it in one home.
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)
	c := New(io.Discard, LogInfo)
	runner, err := c.newRunner(context.Background(), false)
	require.NoError(t, err)
	h, err := capio.Import(input)
	require.NoError(t, err)
	_, _, err = runner.LayoutWithCacheInfo(context.Background(), h, pipeline.Options{})
	require.NoError(t, err)
	require.NoError(t, runner.Close())

	fc, err := cache.NewFileCache(filepath.Join(home, appName))
	require.NoError(t, err)
	stats, err := fc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestWorkspaceKeyer(t *testing.T) {
	opts := cache.LayoutKeyOpts{}
	plain := (&CLI{}).keyer().LayoutKey("abc", opts)
	scoped := (&CLI{Workspace: "airport"}).keyer().LayoutKey("abc", opts)

	assert.Equal(t, "workspace:airport:"+plain, scoped)
}

func TestPublishRejectsBadName(t *testing.T) {
	c := New(io.Discard, LogInfo)
	err := c.publish(context.Background(), document.Document{}, pipeline.Options{}, "../up")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPath), "got %v", err)
}

func TestParseFormats(t *testing.T) {
	assert.Equal(t, []string{"svg"}, parseFormats(""))
	assert.Equal(t, []string{"png", "dot"}, parseFormats(" PNG ,dot"))
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "airport.toml", "airport"},
		{"", "airport.layout.json", "airport"},
		{"", "dir/airport.yaml", "dir/airport"},
		{"out.svg", "airport.toml", "out"},
		{"out.pdf", "airport.toml", "out"},
		{"out", "airport.toml", "out"},
		{"out.txt", "airport.toml", "out.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "")
	assert.Equal(t, []string{"dot", "json", "pdf", "png", "svg"}, got)

	got, _ = completeFormats(nil, nil, "svg,p")
	assert.Equal(t, []string{"svg,pdf", "svg,png"}, got)

	got, _ = completeFormats(nil, nil, "png,")
	assert.NotContains(t, got, "png,png")
	assert.Contains(t, got, "png,svg")
}

func TestCompletionCommand(t *testing.T) {
	for shell := range completionShells {
		assert.NoError(t, execute(t, "completion", shell), shell)
	}
	assert.Error(t, execute(t, "completion", "tcsh"))
}
