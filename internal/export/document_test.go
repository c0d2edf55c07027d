package export

import (
	"errors"
	"strings"
	"testing"
)

type recordingWriter struct {
	calls int
	pages []Page
	err   error
}

func (w *recordingWriter) Write(_ PageGeometry, pages []Page) ([]byte, error) {
	w.calls++
	w.pages = pages
	if w.err != nil {
		return nil, w.err
	}
	return []byte("%PDF-fake"), nil
}

func newTestSlices(t *testing.T, count int) []PageSlice {
	t.Helper()

	raster := newTestRaster(t, 100, 146*count)
	pageSlices, err := NewPaginator(A4Portrait, DefaultJPEGQuality).Paginate(raster)
	if err != nil {
		t.Fatalf("Paginate error: %v", err)
	}
	if len(pageSlices) != count {
		t.Fatalf("expected %d slices, got %d", count, len(pageSlices))
	}
	return pageSlices
}

func TestPlace_PositionsSlicesInsideMargins(t *testing.T) {
	layout, err := Place(A4Portrait, newTestSlices(t, 2))
	if err != nil {
		t.Fatalf("Place error: %v", err)
	}
	if layout.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", layout.PageCount())
	}
	for i, p := range layout.Pages() {
		pl := p.Placement
		if pl.XMm != 12 || pl.YMm != 12 {
			t.Errorf("page %d placed at (%v,%v), want (12,12)", i, pl.XMm, pl.YMm)
		}
		if pl.WidthMm != 186 {
			t.Errorf("page %d width %v, want 186", i, pl.WidthMm)
		}
		if pl.HeightMm > A4Portrait.UsableHeight() {
			t.Errorf("page %d height %v overflows the usable area", i, pl.HeightMm)
		}
		if len(p.Footers) != 0 {
			t.Errorf("page %d has footers before annotation", i)
		}
	}
}

func TestPlace_RejectsEmptyInput(t *testing.T) {
	if _, err := Place(A4Portrait, nil); !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding, got %v", err)
	}
	if _, err := Place(PageGeometry{WidthMm: 10, HeightMm: 10, MarginMm: 6}, newTestSlices(t, 1)); err == nil {
		t.Error("expected error for geometry without usable area")
	}
}

func TestAnnotate_NumbersPagesAfterPlacement(t *testing.T) {
	layout, err := Place(A4Portrait, newTestSlices(t, 3))
	if err != nil {
		t.Fatalf("Place error: %v", err)
	}

	doc := Annotate(layout, "10/15/2026, 9:30:00 AM")
	pages := doc.Pages()
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}

	for i, p := range pages {
		var label *Footer
		for j := range p.Footers {
			if p.Footers[j].Anchor == FooterRight {
				label = &p.Footers[j]
			}
		}
		if label == nil {
			t.Fatalf("page %d has no page label", i+1)
		}
		if want := PageLabel(i+1, 3); label.Text != want {
			t.Errorf("page %d label %q, want %q", i+1, label.Text, want)
		}
		if label.BaselineMm != 8 || label.InsetMm != 12 || label.SizePt != 9 {
			t.Errorf("page %d label placed at inset %v baseline %v size %v", i+1, label.InsetMm, label.BaselineMm, label.SizePt)
		}
	}

	for i, p := range pages {
		hasGenerated := false
		for _, f := range p.Footers {
			if strings.HasPrefix(f.Text, "Generated: ") {
				hasGenerated = true
				if f.Text != "Generated: 10/15/2026, 9:30:00 AM" {
					t.Errorf("unexpected generated footer %q", f.Text)
				}
			}
		}
		if last := i == len(pages)-1; hasGenerated != last {
			t.Errorf("page %d: generated footer present=%v, want %v", i+1, hasGenerated, last)
		}
	}

	for i, p := range layout.Pages() {
		if len(p.Footers) != 0 {
			t.Errorf("annotation modified layout page %d", i+1)
		}
	}
}

func TestPageLabel(t *testing.T) {
	if got := PageLabel(2, 5); got != "Page 2 of 5" {
		t.Errorf("PageLabel(2, 5) = %q", got)
	}
}

func TestFinalize_OnlyOnce(t *testing.T) {
	layout, err := Place(A4Portrait, newTestSlices(t, 1))
	if err != nil {
		t.Fatalf("Place error: %v", err)
	}
	doc := Annotate(layout, "now")
	w := &recordingWriter{}

	out, err := doc.Finalize(w)
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected document bytes")
	}
	if len(w.pages) != 1 || len(w.pages[0].Footers) != 2 {
		t.Errorf("writer received %d pages", len(w.pages))
	}

	if _, err := doc.Finalize(w); !errors.Is(err, ErrFinalized) {
		t.Errorf("expected ErrFinalized, got %v", err)
	}
	if w.calls != 1 {
		t.Errorf("expected writer to be called once, got %d", w.calls)
	}
}

func TestFinalize_WrapsWriterErrors(t *testing.T) {
	layout, err := Place(A4Portrait, newTestSlices(t, 1))
	if err != nil {
		t.Fatalf("Place error: %v", err)
	}

	_, err = Annotate(layout, "now").Finalize(&recordingWriter{err: errors.New("disk full")})
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding, got %v", err)
	}
}
