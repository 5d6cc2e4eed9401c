package telegram

import (
	"strings"
	"unicode"
)

// Characters Telegram MarkdownV2 reserves outside of entities.
const reserved = "_*[]()~`>#+-=|{}.!\\"

// ToMarkdownV2 converts common Markdown into Telegram MarkdownV2 in a single
// pass. Recognized spans are bold (**b**, __b__), italic (*i*, _i_),
// strikethrough (~~s~~), inline code, fenced code and [text](url) links.
// Heading markers are dropped and every other reserved character is escaped.
// Inline spans never cross a line break.
func ToMarkdownV2(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/8)
	convert([]rune(text), &sb)
	return sb.String()
}

func convert(rs []rune, sb *strings.Builder) {
	for i := 0; i < len(rs); {
		if next, ok := span(rs, i, sb); ok {
			i = next
			continue
		}

		if rs[i] == '#' {
			if next, ok := headingMarker(rs, i); ok {
				i = next
				continue
			}
		}

		writeEscaped(sb, rs[i])
		i++
	}
}

// span writes the entity starting at rs[i], if any, and returns the index
// just past it.
func span(rs []rune, i int, sb *strings.Builder) (int, bool) {
	switch {
	case hasPrefix(rs, i, "```"):
		end := indexOf(rs, i+3, "```", true)
		if end < 0 {
			return 0, false
		}
		sb.WriteString("```")
		writeCode(sb, rs[i+3:end])
		sb.WriteString("```")
		return end + 3, true

	case rs[i] == '`':
		end := indexOf(rs, i+1, "`", false)
		if end <= i+1 {
			return 0, false
		}
		sb.WriteByte('`')
		writeCode(sb, rs[i+1:end])
		sb.WriteByte('`')
		return end + 1, true

	case hasPrefix(rs, i, "**"):
		return emphasis(rs, i, "**", "*", sb)

	case hasPrefix(rs, i, "__"):
		return emphasis(rs, i, "__", "*", sb)

	case hasPrefix(rs, i, "~~"):
		return emphasis(rs, i, "~~", "~", sb)

	case rs[i] == '*':
		return emphasis(rs, i, "*", "_", sb)

	case rs[i] == '_':
		return emphasis(rs, i, "_", "_", sb)

	case rs[i] == '[':
		return link(rs, i, sb)
	}

	return 0, false
}

func emphasis(rs []rune, i int, marker, out string, sb *strings.Builder) (int, bool) {
	n := len([]rune(marker))
	start := i + n
	if start >= len(rs) || unicode.IsSpace(rs[start]) {
		return 0, false
	}
	wordMarker := marker[0] == '_'
	if wordMarker && i > 0 && isWordRune(rs[i-1]) {
		return 0, false
	}

	for j := start + 1; j+n <= len(rs); j++ {
		if rs[j] == '\n' {
			return 0, false
		}
		if !hasPrefix(rs, j, marker) || unicode.IsSpace(rs[j-1]) {
			continue
		}
		after := j + n
		if after < len(rs) {
			if wordMarker && isWordRune(rs[after]) {
				continue
			}
			// A single marker must not close on half of a doubled one.
			if n == 1 && rs[after] == rs[j] {
				continue
			}
		}

		sb.WriteString(out)
		convert(rs[start:j], sb)
		sb.WriteString(out)
		return after, true
	}

	return 0, false
}

func link(rs []rune, i int, sb *strings.Builder) (int, bool) {
	closeText := indexOf(rs, i+1, "]", false)
	if closeText <= i+1 || closeText+1 >= len(rs) || rs[closeText+1] != '(' {
		return 0, false
	}
	closeURL := closingParen(rs, closeText+2)
	if closeURL <= closeText+2 {
		return 0, false
	}

	sb.WriteByte('[')
	convert(rs[i+1:closeText], sb)
	sb.WriteString("](")
	for _, r := range rs[closeText+2 : closeURL] {
		if r == ')' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(')')
	return closeURL + 1, true
}

// closingParen finds the ')' that balances an already opened '(' on the same
// line, so URLs may contain nested parentheses.
func closingParen(rs []rune, from int) int {
	depth := 0
	for j := from; j < len(rs); j++ {
		switch rs[j] {
		case '\n':
			return -1
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

// headingMarker skips a run of '#' that opens a heading, either at the start
// of a line or after whitespace, together with the space that follows it.
func headingMarker(rs []rune, i int) (int, bool) {
	if i > 0 && !unicode.IsSpace(rs[i-1]) {
		return 0, false
	}
	j := i
	for j < len(rs) && rs[j] == '#' {
		j++
	}
	if j == len(rs) || rs[j] == '\n' {
		return j, true
	}
	if rs[j] == ' ' || rs[j] == '\t' {
		return j + 1, true
	}
	return 0, false
}

func writeEscaped(sb *strings.Builder, r rune) {
	if strings.ContainsRune(reserved, r) {
		sb.WriteByte('\\')
	}
	sb.WriteRune(r)
}

func writeCode(sb *strings.Builder, rs []rune) {
	for _, r := range rs {
		if r == '`' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
}

func hasPrefix(rs []rune, i int, prefix string) bool {
	for _, p := range prefix {
		if i >= len(rs) || rs[i] != p {
			return false
		}
		i++
	}
	return true
}

// indexOf finds needle at or after from. Unless multiline is set the search
// stops at the first line break.
func indexOf(rs []rune, from int, needle string, multiline bool) int {
	for j := from; j < len(rs); j++ {
		if !multiline && rs[j] == '\n' {
			return -1
		}
		if hasPrefix(rs, j, needle) {
			return j
		}
	}
	return -1
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// plainText turns MarkdownV2 back into readable plain text. Escapes are
// resolved and unescaped emphasis markers dropped, except inside code.
func plainText(s string) string {
	var sb strings.Builder
	escaped, inCode := false, false

	for _, r := range s {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '`':
			inCode = !inCode
		case !inCode && (r == '*' || r == '_' || r == '~'):
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
