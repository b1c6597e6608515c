package pdf

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/outline"
)

// BookmarkOutline reads the document's bookmark tree. Entries that do not
// point at a real page are dropped. A document without bookmarks yields
// nil entries and no error.
func BookmarkOutline(data []byte, log *zap.Logger) []outline.Entry {
	if log == nil {
		log = zap.NewNop()
	}

	conf := model.NewDefaultConfiguration()
	bms, err := api.Bookmarks(bytes.NewReader(data), conf)
	if err != nil {
		log.Debug("bookmark extraction failed", zap.Error(err))
		return nil
	}
	entries := flattenBookmarks(bms, 1, nil)
	log.Debug("bookmark outline extracted", zap.Int("entries", len(entries)))
	return entries
}

func flattenBookmarks(bms []pdfcpu.Bookmark, depth int, acc []outline.Entry) []outline.Entry {
	for _, bm := range bms {
		if bm.PageFrom > 0 {
			acc = append(acc, outline.Entry{
				Level: depth,
				Title: bm.Title,
				Page:  bm.PageFrom,
			})
		}
		acc = flattenBookmarks(bm.Kids, depth+1, acc)
	}
	return acc
}
