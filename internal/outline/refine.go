package outline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Completer is the narrow contract for the optional text-cleaning
// collaborator: one blocking completion call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// refineSystemPrompt describes the editorial policy: keep the authored
// narrative/knowledge structure, drop publishing front- and back-matter.
const refineSystemPrompt = `你是一个图书目录整理助手。下面是从电子书中提取的原始目录，每行一个条目，缩进表示层级（每级两个空格），行尾方括号内是页码。

请清理这份目录：
1. 保留属于正文知识结构的条目（部、章、节等用于组织实际内容的标题）。
2. 删除出版元信息条目：版权页、前言、序、致谢、附录、索引、参考文献、作者/译者简介、目录本身。
3. 修复明显乱码或残缺的标题，但不要改变条目顺序，不要发明新条目。
4. 按原格式输出：每行一个条目，两个空格缩进表示层级，保留行尾的 [页码] 标注。

只输出清理后的目录，不要任何解释。`

var pageAnnotationRe = regexp.MustCompile(`\s*\[(\d+)\]\s*$`)

// Refiner sends an outline to the external collaborator and parses the
// cleaned text back into entries. Strictly best-effort: every failure path
// returns the input outline unchanged.
type Refiner struct {
	client  Completer
	timeout time.Duration
	log     *zap.Logger
}

// NewRefiner wires the collaborator client. Timeout is operation-level and
// minutes-scale; zero selects a 5 minute default.
func NewRefiner(client Completer, timeout time.Duration, log *zap.Logger) *Refiner {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Refiner{client: client, timeout: timeout, log: log}
}

// Refine cleans the outline via the collaborator. On any network or parse
// failure, or an empty refined result, the original outline comes back.
func (r *Refiner) Refine(ctx context.Context, entries []Entry) []Entry {
	if r == nil || r.client == nil || len(entries) == 0 {
		return entries
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.client.Complete(ctx, refineSystemPrompt, EncodeIndented(entries))
	if err != nil {
		r.log.Warn("outline refinement unavailable, keeping raw outline", zap.Error(err))
		return entries
	}

	refined := r.parseReply(reply, entries)
	if len(refined) == 0 {
		r.log.Warn("outline refinement returned nothing usable, keeping raw outline")
		return entries
	}
	r.log.Info("outline refined",
		zap.Int("before", len(entries)),
		zap.Int("after", len(refined)))
	return refined
}

// EncodeIndented flattens entries to one line each: two-space indent per
// nesting level, page number annotated inline as [N] when known.
func EncodeIndented(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		depth := e.Level - 1
		if depth < 0 {
			depth = 0
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(e.Title)
		if e.Page > 0 {
			fmt.Fprintf(&b, " [%d]", e.Page)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// parseReply re-derives each entry from the collaborator's plain-text reply:
// level from leading whitespace, page from the inline annotation when
// present, otherwise re-bound to an original entry by exact then fuzzy title
// match, defaulting to page 1.
func (r *Refiner) parseReply(reply string, original []Entry) []Entry {
	byTitle := make(map[string]Entry, len(original))
	for _, e := range original {
		byTitle[strings.TrimSpace(e.Title)] = e
	}

	var out []Entry
	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		level := indent/2 + 1

		title := strings.TrimSpace(trimmed)
		page := 0
		if m := pageAnnotationRe.FindStringSubmatch(title); m != nil {
			page, _ = strconv.Atoi(m[1])
			title = strings.TrimSpace(pageAnnotationRe.ReplaceAllString(title, ""))
		}
		if title == "" {
			continue
		}

		entry := Entry{Level: level, Title: title, Page: page}
		if src, ok := byTitle[title]; ok {
			entry.Href = src.Href
			entry.PlayOrder = src.PlayOrder
			if entry.Page == 0 {
				entry.Page = src.Page
			}
		} else if src, ok := fuzzyMatch(title, original); ok {
			entry.Href = src.Href
			entry.PlayOrder = src.PlayOrder
			if entry.Page == 0 {
				entry.Page = src.Page
			}
		}
		if entry.Page == 0 && entry.Href == "" {
			entry.Page = 1
		}
		out = append(out, entry)
	}
	return out
}

// fuzzyMatch finds the original entry whose title best matches: substring
// containment counts as a hit, otherwise character-set overlap
// (|intersection| / |union|) must reach 0.5.
func fuzzyMatch(title string, original []Entry) (Entry, bool) {
	bestScore := 0.0
	var best Entry
	found := false
	for _, e := range original {
		cand := strings.TrimSpace(e.Title)
		if cand == "" {
			continue
		}
		score := titleOverlap(title, cand)
		if strings.Contains(cand, title) || strings.Contains(title, cand) {
			if score < 0.5 {
				score = 0.5
			}
		}
		if score >= 0.5 && score > bestScore {
			bestScore = score
			best = e
			found = true
		}
	}
	return best, found
}

func titleOverlap(a, b string) float64 {
	setA := make(map[rune]bool)
	for _, r := range a {
		setA[r] = true
	}
	setB := make(map[rune]bool)
	for _, r := range b {
		setB[r] = true
	}
	inter := 0
	for r := range setA {
		if setB[r] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
