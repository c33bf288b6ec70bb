package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// visibleSpinner returns a spinner that draws into buf regardless of the
// terminal.
func visibleSpinner(ctx context.Context, buf *bytes.Buffer, msg string) *Spinner {
	s := newSpinnerWithContext(ctx, msg)
	s.out = buf
	s.quiet = false
	return s
}

func TestSpinnerDrawsFrames(t *testing.T) {
	var buf bytes.Buffer
	s := visibleSpinner(context.Background(), &buf, "Computing layout...")
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Computing layout...") {
		t.Errorf("spinner output = %q", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not mark the spinner cancelled")
	}
}

func TestSpinnerQuietDrawsNothing(t *testing.T) {
	var buf bytes.Buffer
	s := visibleSpinner(context.Background(), &buf, "Rendering...")
	s.quiet = true
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("quiet spinner wrote %q", buf.String())
	}
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	s := visibleSpinner(ctx, &buf, "Rendering...")
	s.Start()
	time.Sleep(150 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after the context ends")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := visibleSpinner(context.Background(), &buf, "Rendering...")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithError("Render failed")
}
