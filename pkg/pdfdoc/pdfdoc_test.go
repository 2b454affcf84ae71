package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/novvoo/go-pdfsketch/pkg/canvas"
	"github.com/novvoo/go-pdfsketch/pkg/geom"
	"github.com/novvoo/go-pdfsketch/pkg/sketch"
	"github.com/novvoo/go-pdfsketch/pkg/sketchfile"
)

// testPDF 生成两页的最小 PDF：第 1 页继承 200x300 的 MediaBox 并含一行文本，
// 第 2 页为 400x100、Rotate 90
func testPDF(t *testing.T) []byte {
	t.Helper()
	content := "BT /F1 12 Tf 20 250 Td (Hello sketch) Tj ET"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 200 300] " +
			"/Resources << /Font << /F1 5 0 R >> >> >>",
		"<< /Type /Page /Parent 2 0 R /Contents 6 0 R >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 400 100] /Rotate 90 >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestOpenReadsInheritedGeometry(t *testing.T) {
	doc, err := Open(testPDF(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", doc.PageCount())
	}
	want := []geom.Size{geom.Sz(200, 300), geom.Sz(100, 400)}
	got := []geom.Size{doc.PageSize(0), doc.PageSize(1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("page sizes (-want +got):\n%s", diff)
	}
	if doc.Rotation(1) != 90 {
		t.Errorf("Rotation(1) = %d, want 90", doc.Rotation(1))
	}
	if doc.PageSize(5) != (geom.Size{}) {
		t.Errorf("PageSize out of range = %v", doc.PageSize(5))
	}
}

func TestLedongthucFallbackGeometry(t *testing.T) {
	pages, err := readPagesLedongthuc(testPDF(t))
	if err != nil {
		t.Fatalf("readPagesLedongthuc: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d", len(pages))
	}
	if s := pages[0].size(); s != geom.Sz(200, 300) {
		t.Errorf("page 1 size = %v", s)
	}
	if s := pages[1].size(); s != geom.Sz(100, 400) || pages[1].rotate != 90 {
		t.Errorf("page 2 size = %v rotate %d", s, pages[1].rotate)
	}
}

func TestOpenRejectsNonPDF(t *testing.T) {
	if _, err := Open([]byte("hello")); !errors.Is(err, ErrNotPDF) {
		t.Errorf("Open = %v, want ErrNotPDF", err)
	}
}

func TestPageText(t *testing.T) {
	doc, err := Open(testPDF(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	text, err := doc.PageText(0)
	if err != nil {
		t.Fatalf("PageText: %v", err)
	}
	if !strings.Contains(text, "Hello") {
		t.Errorf("PageText = %q", text)
	}
	if _, err := doc.PageText(7); err == nil {
		t.Error("PageText out of range succeeded")
	}
}

func TestToDisplay(t *testing.T) {
	box := geom.R(0, 0, 200, 100)
	tests := []struct {
		rotate int
		want   geom.Point
	}{
		{0, geom.Pt(10, 80)},
		{90, geom.Pt(20, 10)},
		{180, geom.Pt(190, 20)},
		{270, geom.Pt(80, 190)},
	}
	for _, tt := range tests {
		p := pageInfo{box: box, rotate: tt.rotate}
		if got := p.toDisplay(10, 20); got != tt.want {
			t.Errorf("rotate %d: toDisplay = %v, want %v", tt.rotate, got, tt.want)
		}
	}
}

func TestNormalizeRotation(t *testing.T) {
	for in, want := range map[int]int{0: 0, 90: 90, -90: 270, 450: 90, 45: 0, 540: 180} {
		if got := normalizeRotation(in); got != want {
			t.Errorf("normalizeRotation(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFontFamily(t *testing.T) {
	tests := map[string]string{
		"ABCDEF+Courier-Bold": "Monospace",
		"Times-Roman":         "Serif",
		"DejaVuSerif":         "Serif",
		"DejaVuSans":          "Sans",
		"Helvetica":           "Sans",
	}
	for in, want := range tests {
		if got := fontFamily(in); got != want {
			t.Errorf("fontFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func testRecord(t *testing.T) []byte {
	t.Helper()
	rec := sketch.NewCircle().Serialize()
	rec.Page = 1
	rec.Frame = geom.R(5, 6, 30, 40)
	data, err := sketchfile.MarshalDocument(&sketchfile.Document{Graphics: []sketch.Record{rec}})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestLoadContainer(t *testing.T) {
	pdf := testPDF(t)
	container, err := sketchfile.Encode(pdf, testRecord(t))
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(container)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Source != SourceContainer || loaded.Sketch == nil || loaded.PDF.PageCount() != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}

	c, err := loaded.NewCanvas(canvas.DefaultOptions())
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	if c.Len() != 1 || c.UndoManager().CanUndo() {
		t.Errorf("canvas has %d annotations, can undo %v", c.Len(), c.UndoManager().CanUndo())
	}

	again, err := Container(c, loaded.PDF)
	if err != nil {
		t.Fatalf("Container: %v", err)
	}
	f, err := sketchfile.Decode(again)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(f.PDF, pdf) {
		t.Error("container PDF differs from source")
	}
	doc, err := f.Document()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(loaded.Sketch, doc); diff != "" {
		t.Errorf("record changed on resave (-want +got):\n%s", diff)
	}
}

func TestLoadPlainPDF(t *testing.T) {
	loaded, err := Load(testPDF(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Source != SourcePDF || loaded.Sketch != nil {
		t.Errorf("loaded = %+v", loaded)
	}
	if _, err := ExtractSketch(testPDF(t)); !errors.Is(err, ErrNoSketch) {
		t.Errorf("ExtractSketch = %v, want ErrNoSketch", err)
	}
}

func TestEmbedAndExtract(t *testing.T) {
	pdf := testPDF(t)
	container, err := sketchfile.Encode(pdf, testRecord(t))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Embed(pdf, container, &out); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	got, err := ExtractSketch(out.Bytes())
	if err != nil {
		t.Fatalf("ExtractSketch: %v", err)
	}
	if !bytes.Equal(got, container) {
		t.Fatalf("extracted %d bytes, want %d", len(got), len(container))
	}

	loaded, err := Load(out.Bytes())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Source != SourceEmbedded || loaded.Sketch == nil || len(loaded.Sketch.Graphics) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadRejectsUnknown(t *testing.T) {
	if _, err := Load([]byte("GIF89a")); !errors.Is(err, ErrNotPDF) {
		t.Errorf("Load = %v, want ErrNotPDF", err)
	}
	if _, err := Load([]byte("skch\x00\x00\x00\x09")); err == nil {
		t.Error("Load accepted a damaged container")
	}
}
