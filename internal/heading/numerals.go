// Package heading recognizes chapter-style headings and regenerates clean
// canonical numbering when the parsed numeral is corrupt.
package heading

import (
	"strconv"
	"strings"
)

var numeralDigits = []rune("零一二三四五六七八九")

var numeralUnits = []string{"千", "百", "十", ""}

// ChineseNumeral converts n (1–9999) to its Chinese short-scale form, with
// the colloquial simplification that a leading 一十 collapses to 十.
// Values outside the range fall back to decimal digits.
func ChineseNumeral(n int) string {
	if n == 0 {
		return "零"
	}
	if n < 0 || n > 9999 {
		return strconv.Itoa(n)
	}

	pos := []int{n / 1000, n / 100 % 10, n / 10 % 10, n % 10}
	var b strings.Builder
	started := false
	zeroPending := false
	for i, d := range pos {
		if d == 0 {
			if started {
				zeroPending = true
			}
			continue
		}
		if zeroPending {
			b.WriteRune('零')
			zeroPending = false
		}
		b.WriteRune(numeralDigits[d])
		b.WriteString(numeralUnits[i])
		started = true
	}

	s := b.String()
	if strings.HasPrefix(s, "一十") {
		s = strings.TrimPrefix(s, "一")
	}
	return s
}
