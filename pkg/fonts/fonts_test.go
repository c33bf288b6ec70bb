package fonts

import (
	"testing"

	"golang.org/x/image/font"
)

func TestLabelParsedOnce(t *testing.T) {
	a, err := Label()
	if err != nil {
		t.Fatalf("Label() error: %v", err)
	}
	b, _ := Label()
	if a != b {
		t.Error("Label() should return the same font")
	}
}

func TestFacesCache(t *testing.T) {
	faces, err := NewFaces()
	if err != nil {
		t.Fatalf("NewFaces() error: %v", err)
	}
	defer faces.Close()

	small, err := faces.Face(12)
	if err != nil {
		t.Fatalf("Face(12) error: %v", err)
	}
	again, _ := faces.Face(12)
	if small != again {
		t.Error("Face(12) should be cached")
	}
	large, _ := faces.Face(48)
	if font.MeasureString(large, "Travel") <= font.MeasureString(small, "Travel") {
		t.Error("larger face should measure wider")
	}
}
