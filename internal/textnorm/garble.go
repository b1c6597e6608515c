package textnorm

import (
	"strings"
	"unicode"
)

// garbleThreshold is the minimum fraction of recognizable characters a title
// needs to count as readable.
const garbleThreshold = 0.45

// allowedPunct is punctuation that appears in legitimate headings: the ASCII
// set plus common full-width Chinese marks.
const allowedPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	"，。！？；：、“”‘’（）《》〈〉【】「」『』—…·～　"

// TitleMetrics carries the comparable quality signals for one candidate title.
type TitleMetrics struct {
	Length     int
	CJKRatio   float64
	WeirdRatio float64
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

func isAllowed(r rune) bool {
	if isCJK(r) {
		return true
	}
	if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
		return true
	}
	return strings.ContainsRune(allowedPunct, r)
}

// IsGarbled reports whether a title looks like encoding corruption rather
// than genuine content: too few CJK/alphanumeric/punctuation characters,
// or nothing left after trimming whitespace.
func IsGarbled(s string) bool {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return true
	}
	total, ok := 0, 0
	for _, r := range s {
		total++
		if isAllowed(r) {
			ok++
		}
	}
	return float64(ok)/float64(total) < garbleThreshold
}

// Metrics classifies every non-space character of s and returns the raw
// length, the CJK ratio and the complementary unrecognized ratio.
func Metrics(s string) TitleMetrics {
	s = strings.Join(strings.Fields(s), "")
	m := TitleMetrics{}
	total, cjk, ok := 0, 0, 0
	for _, r := range s {
		total++
		if isCJK(r) {
			cjk++
		}
		if isAllowed(r) {
			ok++
		}
	}
	m.Length = total
	if total == 0 {
		m.WeirdRatio = 1
		return m
	}
	m.CJKRatio = float64(cjk) / float64(total)
	m.WeirdRatio = 1 - float64(ok)/float64(total)
	return m
}

// ChooseBetter picks between the current title and a fallback candidate.
// The fallback wins when any improvement signal fires: it is clearly longer,
// clearly more CJK, clearly less noisy, or the current title is a stub of
// four characters or fewer. Deliberately coarse; it exists to replace very
// short or noisy titles, not to rank similar ones.
func ChooseBetter(current, fallback string) string {
	cur := Metrics(current)
	fb := Metrics(fallback)
	if cur.Length == 0 {
		return fallback
	}
	if fb.Length == 0 {
		return current
	}
	signals := 0
	if fb.Length >= cur.Length+2 {
		signals++
	}
	if fb.CJKRatio > cur.CJKRatio+0.15 {
		signals++
	}
	if fb.WeirdRatio < cur.WeirdRatio-0.1 {
		signals++
	}
	if cur.Length <= 4 && fb.Length > cur.Length {
		signals++
	}
	if signals >= 1 {
		return fallback
	}
	return current
}

// IsPrimarilyCJK reports whether at least threshold of the non-space runes
// are CJK ideographs. Used to decide whether a later translation pass is
// needed at all.
func IsPrimarilyCJK(s string, threshold float64) bool {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return false
	}
	total, cjk := 0, 0
	for _, r := range s {
		total++
		if isCJK(r) {
			cjk++
		}
	}
	return float64(cjk)/float64(total) >= threshold
}
