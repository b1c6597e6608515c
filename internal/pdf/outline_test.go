package pdf

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

func TestFlattenBookmarks(t *testing.T) {
	bms := []pdfcpu.Bookmark{
		{
			Title:    "第一部分",
			PageFrom: 1,
			Kids: []pdfcpu.Bookmark{
				{Title: "第一章", PageFrom: 2},
				{Title: "第二章", PageFrom: 9},
			},
		},
		{Title: "第二部分", PageFrom: 15},
	}

	entries := flattenBookmarks(bms, 1, nil)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	wantTitles := []string{"第一部分", "第一章", "第二章", "第二部分"}
	wantLevels := []int{1, 2, 2, 1}
	wantPages := []int{1, 2, 9, 15}
	for i, e := range entries {
		if e.Title != wantTitles[i] {
			t.Errorf("entries[%d].Title = %q, want %q", i, e.Title, wantTitles[i])
		}
		if e.Level != wantLevels[i] {
			t.Errorf("entries[%d].Level = %d, want %d", i, e.Level, wantLevels[i])
		}
		if e.Page != wantPages[i] {
			t.Errorf("entries[%d].Page = %d, want %d", i, e.Page, wantPages[i])
		}
	}
}

func TestFlattenBookmarks_DropsPagelessEntries(t *testing.T) {
	bms := []pdfcpu.Bookmark{
		{Title: "封面", PageFrom: 0, Kids: []pdfcpu.Bookmark{
			{Title: "第一章", PageFrom: 3},
		}},
	}
	entries := flattenBookmarks(bms, 1, nil)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "第一章" || entries[0].Level != 2 {
		t.Errorf("entries[0] = %+v, want 第一章 at level 2", entries[0])
	}
}

func TestBookmarkOutline_InvalidPDF(t *testing.T) {
	if entries := BookmarkOutline([]byte("not a pdf"), nil); entries != nil {
		t.Errorf("BookmarkOutline() = %v, want nil", entries)
	}
}
