package heading

import (
	"regexp"
	"strings"
	"unicode"
)

// markers are the unit glyphs that may follow a 第-prefixed numeral,
// longest first so 部分 is not split into 部 + 分.
var markers = []string{"部分", "章", "节", "篇", "卷", "部", "回", "目"}

var (
	withMarkerRe = regexp.MustCompile(`^第(\S{1,15}?)(部分|章|节|篇|卷|部|回|目)(.*)$`)
	// The numeral must end the title or be whitespace-delimited, so prose
	// titles like 第二天早上 stay untouched.
	noMarkerRe = regexp.MustCompile(`^第([0-9]+|[〇零一二三四五六七八九十百千两]+|[IVXLCDMivxlcdm]+)(?:\s+(.*))?$`)
	bareSegRe  = regexp.MustCompile(`^第(\S{1,15})\s+(.*)$`)

	arabicSegRe  = regexp.MustCompile(`^[0-9]+$`)
	chineseSegRe = regexp.MustCompile(`^[〇零一二三四五六七八九十百千两]+$`)
	romanSegRe   = regexp.MustCompile(`^[IVXLCDMivxlcdm]+$`)
)

// Canonicalizer rewrites chapter headings whose numeral segment is corrupt,
// substituting a running per-level sequence number. Counters are scoped to
// one outline pass: deeper-level counters reset whenever a shallower or
// equal level is seen, so numbering restarts inside each chain of ancestors.
type Canonicalizer struct {
	counters map[int]int
}

func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{counters: make(map[int]int)}
}

// Canonicalize must be called once per outline entry in document order.
// Non-第 titles pass through unchanged; so do headings whose numeral segment
// is already pure.
func (c *Canonicalizer) Canonicalize(level int, title string) string {
	c.counters[level]++
	for k := range c.counters {
		if k > level {
			delete(c.counters, k)
		}
	}

	if !strings.HasPrefix(title, "第") {
		return title
	}

	if m := withMarkerRe.FindStringSubmatch(title); m != nil {
		seg, marker, rest := m[1], m[2], m[3]
		if isPureNumeral(seg) {
			return title
		}
		return "第" + ChineseNumeral(c.counters[level]) + marker + rest
	}

	if m := noMarkerRe.FindStringSubmatch(title); m != nil {
		seg, rest := m[1], m[2]
		marker := findMarker(rest)
		if marker == "" {
			marker = defaultMarker(level)
		}
		if rest == "" {
			return "第" + seg + marker
		}
		return "第" + seg + marker + " " + rest
	}

	// A marker-less segment that reads as a damaged numeral rather than an
	// ordinary word gets the running counter and a marker too.
	if m := bareSegRe.FindStringSubmatch(title); m != nil {
		seg, rest := m[1], m[2]
		if looksCorruptNumeral(seg) {
			marker := findMarker(rest)
			if marker == "" {
				marker = defaultMarker(level)
			}
			return "第" + ChineseNumeral(c.counters[level]) + marker + " " + rest
		}
	}

	return title
}

// looksCorruptNumeral reports whether seg contains characters outside Han,
// letters and digits, the signature of a numeral mangled by bad decoding.
func looksCorruptNumeral(seg string) bool {
	for _, r := range seg {
		if unicode.Is(unicode.Han, r) || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return true
	}
	return false
}

// isPureNumeral reports whether seg is wholly Arabic, Chinese or Roman
// numerals; mixed or stray characters mean the segment is corrupt.
func isPureNumeral(seg string) bool {
	return arabicSegRe.MatchString(seg) || chineseSegRe.MatchString(seg) || romanSegRe.MatchString(seg)
}

// findMarker returns a unit marker already present elsewhere in the title.
func findMarker(s string) string {
	best := ""
	bestIdx := -1
	for _, m := range markers {
		idx := strings.Index(s, m)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx || (idx == bestIdx && len(m) > len(best)) {
			best = m
			bestIdx = idx
		}
	}
	return best
}

func defaultMarker(level int) string {
	if level <= 2 {
		return "章"
	}
	return "节"
}
