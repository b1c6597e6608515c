// Package textnorm repairs and scores title strings coming from unreliable
// e-book navigation metadata: mis-decoded UTF-16, stray control characters,
// bytes that were run through the wrong codec.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	encunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeBytes decodes raw bytes into a cleaned string. Encodings are tried
// in order: UTF-16 (BOM required), UTF-8, GB18030, Latin-1. The first decode
// that succeeds wins; Latin-1 never fails, so the result is never an error.
func NormalizeBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return Normalize(decodeBytes(b))
}

func decodeBytes(b []byte) string {
	if len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		dec := encunicode.UTF16(encunicode.LittleEndian, encunicode.UseBOM).NewDecoder()
		if s, _, err := transform.String(dec, string(b)); err == nil {
			return s
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	if s, _, err := transform.String(simplifiedchinese.GB18030.NewDecoder(), string(b)); err == nil && utf8.ValidString(s) {
		return s
	}
	s, _, err := transform.String(charmap.ISO8859_1.NewDecoder(), string(b))
	if err != nil {
		return string(b)
	}
	return s
}

// Normalize repairs a title string in place: reverses the common
// UTF-16-read-as-Latin-1 mojibake, applies NFKC, and strips NUL bytes,
// byte-order marks and format/private-use/surrogate runes. It never fails;
// the worst case is a partially cleaned string, and empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if fixed, ok := reverseUTF16Mojibake(s); ok {
		s = fixed
	}
	s = norm.NFKC.String(s)
	s = stripUnprintable(s)
	return strings.TrimSpace(s)
}

// reverseUTF16Mojibake detects text that was UTF-16 on the wire but decoded
// as Latin-1: every rune fits in a byte and the byte stream opens with a
// UTF-16 byte-order mark. Re-decodes as UTF-16 when detected.
func reverseUTF16Mojibake(s string) (string, bool) {
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", false
		}
		raw = append(raw, byte(r))
	}
	if len(raw) < 4 {
		return "", false
	}
	le := raw[0] == 0xFF && raw[1] == 0xFE
	be := raw[0] == 0xFE && raw[1] == 0xFF
	if !le && !be {
		return "", false
	}
	raw = raw[2:]
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		if le {
			units = append(units, uint16(raw[i])|uint16(raw[i+1])<<8)
		} else {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
	}
	decoded := string(utf16.Decode(units))
	if decoded == "" {
		return "", false
	}
	return decoded, true
}

func stripUnprintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == 0 || r == utf8.RuneError {
			continue
		}
		// Cf covers U+FEFF, so BOMs anywhere in the string go too.
		if unicode.In(r, unicode.Cf, unicode.Co, unicode.Cs) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
