package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestPDFWriter_WritesOnePagePerPlacement(t *testing.T) {
	layout, err := Place(A4Portrait, newTestSlices(t, 3))
	if err != nil {
		t.Fatalf("Place error: %v", err)
	}
	doc := Annotate(layout, "10/15/2026, 9:30:00 AM")

	out, err := doc.Finalize(NewPDFWriter())
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF: %q", out[:min(len(out), 8)])
	}

	count, err := api.PageCount(bytes.NewReader(out), newPDFConfiguration())
	if err != nil {
		t.Fatalf("PageCount error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 pages, got %d", count)
	}
}

func TestPDFWriter_RejectsEmptyDocument(t *testing.T) {
	if _, err := NewPDFWriter().Write(A4Portrait, nil); err == nil {
		t.Error("expected error for a document without pages")
	}
}

func TestImportDescription(t *testing.T) {
	desc := importDescription(A4Portrait, Placement{XMm: 12, YMm: 12, WidthMm: 186, WidthPx: 1980})
	for _, want := range []string{"dimensions:210 297", "position:tl", "offset:12 -12", "scalefactor:0.266285 abs"} {
		if !strings.Contains(desc, want) {
			t.Errorf("import description %q is missing %q", desc, want)
		}
	}
}

func TestFooterDescription(t *testing.T) {
	left := footerDescription(Footer{Anchor: FooterLeft, InsetMm: 12, BaselineMm: 8, SizePt: 9, Color: "#666666"})
	if !strings.Contains(left, "position:bl") || !strings.Contains(left, "offset:12 8") {
		t.Errorf("unexpected left footer description %q", left)
	}
	right := footerDescription(Footer{Anchor: FooterRight, InsetMm: 12, BaselineMm: 8, SizePt: 9, Color: "#666666"})
	if !strings.Contains(right, "position:br") || !strings.Contains(right, "offset:-12 8") {
		t.Errorf("unexpected right footer description %q", right)
	}
	if !strings.Contains(right, "points:9") || !strings.Contains(right, "fillcolor:#666666") {
		t.Errorf("unexpected footer style %q", right)
	}
}
