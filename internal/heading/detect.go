package heading

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxHeadingLen bounds how long a line may be and still count as a chapter
// heading; anything longer is body text.
const maxHeadingLen = 40

var headingPrefixes = []string{
	"序章", "序言", "前言", "引言", "楔子", "后记", "尾声", "附录",
	"目录", "结语", "终章", "番外",
}

// Without a unit marker the numeral must end the line or be followed by
// whitespace, so running prose like 第二天 is not mistaken for a heading.
var bareNumberHeadingRe = regexp.MustCompile(`^第([0-9]+|[〇零一二三四五六七八九十百千两]+|[IVXLCDMivxlcdm]+)(\s.*)?$`)

// IsHeadingLine reports whether a text line looks like a chapter heading:
// a 第-numbered heading with a unit marker, or one of the conventional
// front and back matter titles.
func IsHeadingLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxHeadingLen {
		return false
	}

	if strings.HasPrefix(line, "第") {
		if m := withMarkerRe.FindStringSubmatch(line); m != nil {
			return isPureNumeral(m[1])
		}
		return bareNumberHeadingRe.MatchString(line)
	}

	for _, p := range headingPrefixes {
		if line == p || strings.HasPrefix(line, p+" ") {
			return true
		}
	}
	return false
}
