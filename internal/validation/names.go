package validation

import "unicode/utf8"

type runeRange struct{ lo, hi rune }

// nameStartRanges is the XML 1.0 (fifth edition) NameStartChar production
// without ':', since namespaces are not supported.
var nameStartRanges = []runeRange{
	{'A', 'Z'}, {'_', '_'}, {'a', 'z'},
	{0xC0, 0xD6}, {0xD8, 0xF6}, {0xF8, 0x2FF},
	{0x370, 0x37D}, {0x37F, 0x1FFF}, {0x200C, 0x200D},
	{0x2070, 0x218F}, {0x2C00, 0x2FEF}, {0x3001, 0xD7FF},
	{0xF900, 0xFDCF}, {0xFDF0, 0xFFFD}, {0x10000, 0xEFFFF},
}

// nameRanges holds the extra NameChar ranges.
var nameRanges = []runeRange{
	{'-', '-'}, {'.', '.'}, {'0', '9'}, {0xB7, 0xB7},
	{0x300, 0x36F}, {0x203F, 0x2040},
}

func inRanges(r rune, ranges []runeRange) bool {
	for _, rr := range ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// IsXMLName reports whether s is a valid, namespace-free XML element name.
func IsXMLName(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for i, r := range s {
		if inRanges(r, nameStartRanges) {
			continue
		}
		if i > 0 && inRanges(r, nameRanges) {
			continue
		}
		return false
	}
	return true
}
