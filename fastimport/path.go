package fastimport

import "strings"

// QuotePath renders a path for use in an M/D/C/R command, applying
// git fast-import's C-style quoting whenever the path contains a byte
// that would otherwise be ambiguous in the line-oriented stream: leading
// or embedded whitespace, quotes, backslashes, or control characters.
func QuotePath(path string) string {
	if !needsQuoting(path) {
		return path
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(octalEscape(c))
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(path string) bool {
	if path == "" {
		return false
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == ' ' || c == '"' || c == '\\' || c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

func octalEscape(c byte) string {
	const digits = "01234567"
	return string([]byte{'\\', digits[(c>>6)&7], digits[(c>>3)&7], digits[c&7]})
}
