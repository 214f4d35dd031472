package planner

import (
	"encoding/json"
	"strings"
)

// RepairRule is one named, deterministic normalization of malformed
// structured text. Each rule is independently testable.
type RepairRule struct {
	Name  string
	Apply func(string) string
}

// repairRules are applied in order by Repair. Order matters: trimming the
// non-JSON preamble first keeps the later string-aware scans anchored on the
// candidate document.
var repairRules = []RepairRule{
	{Name: "normalize-control-chars", Apply: normalizeControlChars},
	{Name: "trim-to-json", Apply: trimToJSON},
	{Name: "remove-trailing-commas", Apply: removeTrailingCommas},
	{Name: "balance-brackets", Apply: balanceBrackets},
}

// Repair normalizes malformed model output before parsing. It is idempotent
// and never alters semantically meaningful content inside valid JSON: input
// that already parses is returned unchanged.
func Repair(s string) string {
	if json.Valid([]byte(s)) {
		return s
	}
	for _, rule := range repairRules {
		s = rule.Apply(s)
		if json.Valid([]byte(s)) {
			return s
		}
	}
	return s
}

// normalizeControlChars replaces stray control characters (everything below
// 0x20 except tab, newline, carriage return) with spaces. Raw control
// characters are invalid inside JSON strings, so this loses nothing a parser
// would have accepted.
func normalizeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return ' '
		}
		return r
	}, s)
}

// trimToJSON strips non-JSON preamble and suffix: it keeps the region from
// the first { or [ through its matching close bracket. If no opener is
// present the input is returned unchanged; if the opener is never closed the
// suffix from the opener onward is kept for balance-brackets to finish.
func trimToJSON(s string) string {
	objAt := strings.IndexByte(s, '{')
	arrAt := strings.IndexByte(s, '[')

	start := objAt
	if start < 0 || (arrAt >= 0 && arrAt < start) {
		start = arrAt
	}
	if start < 0 {
		return s
	}

	candidate := s[start:]
	if end := matchingBracketEnd(candidate); end > 0 {
		return candidate[:end]
	}
	return candidate
}

// matchingBracketEnd returns the index one past the close bracket matching
// the opener at position 0, or -1 if the document never closes. The scan is
// string-aware so brackets inside string literals do not count.
func matchingBracketEnd(s string) int {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// removeTrailingCommas drops commas that directly precede a closing brace or
// bracket, the most common malformation in model-emitted JSON.
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		if inString {
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			// Look ahead past whitespace; drop the comma if the next
			// significant byte closes a container.
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// balanceBrackets repairs unmatched brackets: an unterminated string literal
// is closed, excess closers are dropped, and unclosed containers are closed
// in reverse order of opening.
func balanceBrackets(s string) string {
	var stack []byte
	var b strings.Builder
	b.Grow(len(s) + 4)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		if inString {
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inString = true
			b.WriteByte(c)
		case '{', '[':
			stack = append(stack, c)
			b.WriteByte(c)
		case '}', ']':
			want := byte('{')
			if c == ']' {
				want = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != want {
				// Excess or mismatched closer: drop it.
				continue
			}
			stack = stack[:len(stack)-1]
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
