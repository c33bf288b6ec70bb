package document

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
	"github.com/matzehuels/capmap/pkg/layout"
)

func sampleResult(t *testing.T) *layout.Result {
	t.Helper()
	h, err := hierarchy.FromEntries([]hierarchy.Entry{
		{ID: "A", Children: []string{"B", "C"}},
		{ID: "B"},
		{ID: "C"},
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := layout.Config{PaddingSize: 10, MaxDepth: 1, BaseWidth: 100, BaseHeight: 50, StartY: 5}
	res, err := layout.NewEngine(cfg).Compute(context.Background(), h)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestFromResult(t *testing.T) {
	doc := FromResult(sampleResult(t), "Sample")

	if _, err := uuid.Parse(doc.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", doc.ID, err)
	}
	if doc.Title != "Sample" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Shapes) != 3 {
		t.Fatalf("len(Shapes) = %d, want 3", len(doc.Shapes))
	}

	want := []Shape{
		{ID: "A", Label: "A", Level: 0, Rank: 0, X: -10, Y: 5, Width: 180, Height: 70},
		{ID: "B", Label: "B", Level: 1, Rank: 0, Parent: "A", X: 60, Y: 5, Width: 100, Height: 50},
		{ID: "C", Label: "C", Level: 1, Rank: 1, Parent: "A", X: 120, Y: 5, Width: 100, Height: 50},
	}
	for i, w := range want {
		if doc.Shapes[i] != w {
			t.Errorf("Shapes[%d] = %+v, want %+v", i, doc.Shapes[i], w)
		}
	}

	if doc.MinX != -100 || doc.Width != 270 || doc.MinY != -30 || doc.Height != 70 {
		t.Errorf("bounds = (%g,%g) %gx%g", doc.MinX, doc.MinY, doc.Width, doc.Height)
	}
	if doc.Config.MaxDepth != 1 {
		t.Errorf("Config.MaxDepth = %d", doc.Config.MaxDepth)
	}
}

func TestFromResultFreshIDs(t *testing.T) {
	res := sampleResult(t)
	if FromResult(res, "").ID == FromResult(res, "").ID {
		t.Error("documents share an ID")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Document {
		return Document{Shapes: []Shape{
			{ID: "r", Width: 1, Height: 1},
			{ID: "a", Parent: "r", Width: 1, Height: 1},
		}}
	}
	tests := []struct {
		name   string
		mutate func(*Document)
		ok     bool
	}{
		{"valid", func(*Document) {}, true},
		{"no shapes", func(d *Document) { d.Shapes = nil }, false},
		{"empty id", func(d *Document) { d.Shapes[1].ID = "" }, false},
		{"duplicate id", func(d *Document) { d.Shapes[1].ID = "r" }, false},
		{"zero width", func(d *Document) { d.Shapes[0].Width = 0 }, false},
		{"unknown parent", func(d *Document) { d.Shapes[1].Parent = "ghost" }, false},
		{"two roots", func(d *Document) { d.Shapes[1].Parent = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			err := d.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if !tt.ok && !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Validate() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	doc := FromResult(sampleResult(t), "Round trip")
	path := filepath.Join(t.TempDir(), "layout.json")

	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if got.ID != doc.ID || got.Title != doc.Title || got.Config != doc.Config {
		t.Errorf("header mismatch: got %+v", got)
	}
	for i := range doc.Shapes {
		if got.Shapes[i] != doc.Shapes[i] {
			t.Errorf("Shapes[%d] = %+v, want %+v", i, got.Shapes[i], doc.Shapes[i])
		}
	}
}

func TestUnmarshalErrors(t *testing.T) {
	if _, err := Unmarshal([]byte("{")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Unmarshal(bad json) error = %v", err)
	}
	if _, err := Unmarshal([]byte(`{"shapes": []}`)); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Unmarshal(empty) error = %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}
