package epub

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/outline"
)

// Resolver maps outline entries to spine reading-order indices. Matching
// degrades from exact href equality through normalized-path and filename
// matching down to play-order and finally a sequential counter, so every
// entry lands on some index even when the navigation document and the
// spine disagree about paths.
type Resolver struct {
	spine  []string
	exact  map[string]int
	norm   map[string]int
	byFile map[string]int
	next   int
	log    *zap.Logger
}

func NewResolver(spine []string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		spine:  spine,
		exact:  make(map[string]int, len(spine)),
		norm:   make(map[string]int, len(spine)),
		byFile: make(map[string]int, len(spine)),
		log:    log,
	}
	for i, p := range spine {
		if _, ok := r.exact[p]; !ok {
			r.exact[p] = i
		}
		np := normalizePath(p)
		if _, ok := r.norm[np]; !ok {
			r.norm[np] = i
		}
		base := path.Base(np)
		if _, ok := r.byFile[base]; !ok {
			r.byFile[base] = i
		}
	}
	return r
}

// Resolve places one entry. Degraded is set when neither the href nor the
// play order could be trusted and the sequential counter decided.
func (r *Resolver) Resolve(e outline.Entry) outline.Resolved {
	if len(r.spine) == 0 {
		return outline.Resolved{Entry: e, StartUnit: 0, Degraded: true}
	}

	href := stripFragment(e.Href)
	if href != "" {
		if i, ok := r.exact[href]; ok {
			return r.placed(e, i)
		}
		np := normalizePath(href)
		if i, ok := r.norm[np]; ok {
			return r.placed(e, i)
		}
		// Path containment covers navigation documents that record hrefs
		// relative to a different base directory than the spine does.
		for i, sp := range r.spine {
			snp := normalizePath(sp)
			if strings.HasSuffix(snp, "/"+np) || strings.HasSuffix(np, "/"+snp) {
				return r.placed(e, i)
			}
		}
		if i, ok := r.byFile[path.Base(np)]; ok {
			return r.placed(e, i)
		}
	}

	if e.PlayOrder > 0 && e.PlayOrder <= len(r.spine) {
		i := e.PlayOrder
		if i >= len(r.spine) {
			i = len(r.spine) - 1
		}
		r.log.Debug("outline entry placed by play order",
			zap.String("title", e.Title),
			zap.Int("playOrder", e.PlayOrder),
			zap.Int("spineIndex", i))
		return r.placed(e, i)
	}

	i := r.next
	if i >= len(r.spine) {
		i = len(r.spine) - 1
	}
	r.log.Debug("outline entry placed sequentially",
		zap.String("title", e.Title),
		zap.String("href", e.Href),
		zap.Int("spineIndex", i))
	res := r.placed(e, i)
	res.Degraded = true
	return res
}

// ResolveAll resolves a whole outline in document order.
func (r *Resolver) ResolveAll(entries []outline.Entry) []outline.Resolved {
	out := make([]outline.Resolved, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.Resolve(e))
	}
	return out
}

func (r *Resolver) placed(e outline.Entry, i int) outline.Resolved {
	if i+1 > r.next {
		r.next = i + 1
	}
	return outline.Resolved{Entry: e, StartUnit: i}
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	return path.Clean(p)
}

func stripFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}
