package ifc

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var errBadEscape = errors.New("malformed string escape")

// decodeString resolves the ISO 10303-21 control directives inside a string
// literal: \\ for a backslash, \S\c for the upper half of ISO 8859, \X\hh for
// a single ISO 8859-1 byte, and \X2\ ... \X0\ or \X4\ ... \X0\ for UTF-16 and
// UTF-32 code units. Code page switches (\PA\ and friends) are dropped.
func decodeString(raw []byte) (string, error) {
	if !containsBackslash(raw) {
		if utf8.Valid(raw) {
			return string(raw), nil
		}
		return latin1(raw), nil
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		rest := raw[i:]
		switch {
		case hasPrefix(rest, `\\`):
			sb.WriteByte('\\')
			i += 2
		case hasPrefix(rest, `\X2\`), hasPrefix(rest, `\X4\`):
			width := 4
			if rest[2] == '4' {
				width = 8
			}
			end := indexOf(raw, i+4, `\X0\`)
			if end < 0 {
				return "", errBadEscape
			}
			hex := raw[i+4 : end]
			if len(hex)%width != 0 {
				return "", errBadEscape
			}
			units := make([]uint16, 0, len(hex)/4)
			for j := 0; j < len(hex); j += width {
				n, err := strconv.ParseUint(string(hex[j:j+width]), 16, 32)
				if err != nil {
					return "", errBadEscape
				}
				if width == 8 {
					sb.WriteRune(rune(n))
					continue
				}
				units = append(units, uint16(n))
			}
			if len(units) > 0 {
				sb.WriteString(string(utf16.Decode(units)))
			}
			i = end + 4
		case hasPrefix(rest, `\X\`):
			if len(rest) < 5 {
				return "", errBadEscape
			}
			n, err := strconv.ParseUint(string(rest[3:5]), 16, 8)
			if err != nil {
				return "", errBadEscape
			}
			sb.WriteRune(rune(n))
			i += 5
		case hasPrefix(rest, `\S\`):
			if len(rest) < 4 {
				return "", errBadEscape
			}
			sb.WriteRune(rune(rest[3]) + 128)
			i += 4
		case len(rest) >= 4 && rest[1] == 'P' && rest[3] == '\\':
			i += 4
		default:
			sb.WriteByte('\\')
			i++
		}
	}
	return sb.String(), nil
}

func containsBackslash(b []byte) bool {
	for _, c := range b {
		if c == '\\' {
			return true
		}
	}
	return false
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

func indexOf(b []byte, from int, needle string) int {
	idx := strings.Index(string(b[from:]), needle)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
