package epub

import (
	"testing"

	"github.com/liushu2048/booktoc/internal/outline"
)

func TestResolver_Strategies(t *testing.T) {
	spine := []string{
		"OEBPS/cover.xhtml",
		"OEBPS/text/ch1.xhtml",
		"OEBPS/text/ch2.xhtml",
		"OEBPS/text/ch3.xhtml",
		"OEBPS/text/ch4.xhtml",
	}

	tests := []struct {
		name         string
		entry        outline.Entry
		wantUnit     int
		wantDegraded bool
	}{
		{
			name:     "exact match",
			entry:    outline.Entry{Title: "Ch1", Href: "OEBPS/text/ch1.xhtml"},
			wantUnit: 1,
		},
		{
			name:     "exact match ignores fragment",
			entry:    outline.Entry{Title: "Ch1 Sec2", Href: "OEBPS/text/ch1.xhtml#sec2"},
			wantUnit: 1,
		},
		{
			name:     "leading slash normalized",
			entry:    outline.Entry{Title: "Ch2", Href: "/OEBPS/text/ch2.xhtml"},
			wantUnit: 2,
		},
		{
			name:     "relative suffix containment",
			entry:    outline.Entry{Title: "Ch3", Href: "text/ch3.xhtml"},
			wantUnit: 3,
		},
		{
			name:     "filename only",
			entry:    outline.Entry{Title: "Ch4", Href: "wrong/dir/ch4.xhtml"},
			wantUnit: 4,
		},
		{
			name:     "play order as index",
			entry:    outline.Entry{Title: "Mystery", Href: "missing.xhtml", PlayOrder: 3},
			wantUnit: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(spine, nil)
			got := r.Resolve(tt.entry)
			if got.StartUnit != tt.wantUnit {
				t.Errorf("StartUnit = %d, want %d", got.StartUnit, tt.wantUnit)
			}
			if got.Degraded != tt.wantDegraded {
				t.Errorf("Degraded = %v, want %v", got.Degraded, tt.wantDegraded)
			}
		})
	}
}

func TestResolver_SequentialFallback(t *testing.T) {
	spine := []string{"a.xhtml", "b.xhtml", "c.xhtml"}
	r := NewResolver(spine, nil)

	first := r.Resolve(outline.Entry{Title: "A", Href: "a.xhtml"})
	if first.StartUnit != 0 || first.Degraded {
		t.Fatalf("first = %+v, want unit 0 not degraded", first)
	}

	// No href, no play order: placed after the last resolved entry.
	second := r.Resolve(outline.Entry{Title: "Unknown"})
	if second.StartUnit != 1 {
		t.Errorf("second.StartUnit = %d, want 1", second.StartUnit)
	}
	if !second.Degraded {
		t.Error("second.Degraded = false, want true")
	}

	third := r.Resolve(outline.Entry{Title: "Also unknown"})
	if third.StartUnit != 2 {
		t.Errorf("third.StartUnit = %d, want 2", third.StartUnit)
	}

	// Counter clamps at the end of the spine.
	fourth := r.Resolve(outline.Entry{Title: "Past the end"})
	if fourth.StartUnit != 2 {
		t.Errorf("fourth.StartUnit = %d, want 2", fourth.StartUnit)
	}
}

func TestResolver_PlayOrderOutOfRange(t *testing.T) {
	spine := []string{"a.xhtml", "b.xhtml"}
	r := NewResolver(spine, nil)

	got := r.Resolve(outline.Entry{Title: "Way out", PlayOrder: 99})
	if !got.Degraded {
		t.Error("Degraded = false, want true for out-of-range play order")
	}
	if got.StartUnit < 0 || got.StartUnit >= len(spine) {
		t.Errorf("StartUnit = %d, out of spine range", got.StartUnit)
	}
}

func TestResolver_EmptySpine(t *testing.T) {
	r := NewResolver(nil, nil)
	got := r.Resolve(outline.Entry{Title: "Anything", Href: "a.xhtml"})
	if !got.Degraded {
		t.Error("Degraded = false, want true for empty spine")
	}
	if got.StartUnit != 0 {
		t.Errorf("StartUnit = %d, want 0", got.StartUnit)
	}
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	spine := []string{"a.xhtml", "b.xhtml", "c.xhtml"}
	r := NewResolver(spine, nil)

	entries := []outline.Entry{
		{Title: "A", Href: "a.xhtml"},
		{Title: "B", Href: "b.xhtml"},
		{Title: "C", Href: "c.xhtml"},
	}
	got := r.ResolveAll(entries)
	if len(got) != 3 {
		t.Fatalf("got %d resolved entries, want 3", len(got))
	}
	for i, res := range got {
		if res.StartUnit != i {
			t.Errorf("resolved[%d].StartUnit = %d, want %d", i, res.StartUnit, i)
		}
	}
}
