package canvas

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
)

func TestSnapshotIsIndependent(t *testing.T) {
	c := newTestCanvas(t)
	r := addRect(t, c, 1, geom.R(10, 10, 20, 20))
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	c.SetSelection(r)
	c.MoveSelectionBy(50, 50)

	if n := len(snap.Annotations(0)); n != 0 {
		t.Errorf("page 0 annotations = %d", n)
	}
	got := snap.Annotations(1)
	if len(got) != 1 {
		t.Fatalf("page 1 annotations = %d, want 1", len(got))
	}
	if got[0] == sketch.Annotation(r) {
		t.Fatal("snapshot shares annotation with canvas")
	}
	if f := got[0].Frame(); f != geom.R(10, 10, 20, 20) {
		t.Errorf("snapshot frame = %v", f)
	}
}

func TestRenderPageImageBackground(t *testing.T) {
	snap := NewSnapshot(NewBlankPages(1, geom.Sz(20, 10)), nil)
	red := sketch.RGBA(1, 0, 0, 1)
	surf, err := snap.RenderPageImage(0, &RenderOptions{DPI: 144, Background: &red})
	if err != nil {
		t.Fatalf("RenderPageImage: %v", err)
	}
	defer surf.Destroy()

	img, err := SurfaceToImage(surf)
	if err != nil {
		t.Fatalf("SurfaceToImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("image size = %v, want 40x20", b)
	}
	px := img.RGBAAt(20, 10)
	if px.R < 250 || px.G > 5 || px.B > 5 || px.A < 250 {
		t.Errorf("center pixel = %+v, want opaque red", px)
	}
}

func TestRenderPageOutOfRange(t *testing.T) {
	snap := NewSnapshot(NewBlankPages(1, geom.Sz(20, 10)), nil)
	if _, err := snap.RenderPageImage(3, nil); err == nil {
		t.Error("expected error for missing page")
	}
}

func TestBatchRendererWritesAllPages(t *testing.T) {
	c := newTestCanvas(t)
	addRect(t, c, 0, geom.R(10, 10, 20, 20))
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	dir := t.TempDir()
	var mu sync.Mutex
	var calls []int
	br := NewBatchRenderer(snap, 2)
	err = br.RenderAll(dir, RenderOptions{DPI: 36}, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		calls = append(calls, completed)
	})
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("progress called %d times, want 2", len(calls))
	}
	for _, name := range []string{"page_1.png", "page_2.png"} {
		st, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if st.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestBatchRendererReportsFailures(t *testing.T) {
	snap := NewSnapshot(NewBlankPages(1, geom.Sz(20, 10)), nil)
	br := NewBatchRenderer(snap, 0)
	jobs := []RenderJob{
		{Page: 0, OutputPath: filepath.Join(t.TempDir(), "ok.png")},
		{Page: 5, OutputPath: filepath.Join(t.TempDir(), "bad.png")},
	}
	results := br.RenderPages(jobs, nil)
	if results[0].Error != nil {
		t.Errorf("page 0: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("page 5 should fail")
	}
	if firstError(results) == nil {
		t.Error("firstError = nil")
	}
}

func TestPaintClearsDirtyThroughOffscreen(t *testing.T) {
	c := newTestCanvas(t)
	addRect(t, c, 0, geom.R(10, 10, 20, 20))
	off, err := NewOffscreenFor(c.ViewSize(), c.Zoom())
	if err != nil {
		t.Fatalf("NewOffscreenFor: %v", err)
	}
	defer off.Close()
	off.SetSynchronous(true)

	l := NewLoop()
	r := c.AttachRedrawer(l, off)
	l.RunPending()
	if r.Frames() < 1 || off.Flushes() < 1 {
		t.Fatalf("frames %d flushes %d", r.Frames(), off.Flushes())
	}
	if !c.Dirty().IsEmpty() {
		t.Errorf("dirty = %v after paint", c.Dirty())
	}
	if r.InFlight() {
		t.Error("synchronous flush left frame in flight")
	}
}
