package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Repair names reported by Repair.
const (
	RepairStripFence      = "strip-fence"
	RepairTrailingComma   = "trailing-comma"
	RepairBareKey         = "bare-key"
	RepairSmartQuotes     = "smart-quotes"
	RepairBooleanCase     = "boolean-case"
	RepairBareValue       = "bare-value"
	RepairNewlineInString = "newline-in-string"
)

var (
	leadingFence  = regexp.MustCompile("^```json\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")

	smartQuotes = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
	)
)

// Repair applies textual fixes for the JSON mistakes language models
// commonly make. It returns the repaired text and the names of the
// repairs that changed something.
//
// Structural repairs are applied by a single scanner that tracks string
// literals, so text inside quoted values is never rewritten except for
// raw newlines, which are invalid inside JSON strings.
func Repair(s string) (string, []string) {
	var applied []string
	mark := func(name string) {
		for _, a := range applied {
			if a == name {
				return
			}
		}
		applied = append(applied, name)
	}

	if stripped := trailingFence.ReplaceAllString(leadingFence.ReplaceAllString(s, ""), ""); stripped != s {
		s = stripped
		mark(RepairStripFence)
	}
	if replaced := smartQuotes.Replace(s); replaced != s {
		s = replaced
		mark(RepairSmartQuotes)
	}

	r := &repairer{src: []rune(s), mark: mark}
	return r.run(), applied
}

type repairer struct {
	src  []rune
	out  strings.Builder
	mark func(string)
}

func (r *repairer) run() string {
	inString := false
	escaped := false
	// expectKey is true right after '{' or ',' outside a string
	expectKey := false

	for i := 0; i < len(r.src); i++ {
		c := r.src[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\' && i+1 < len(r.src) && r.src[i+1] == 'n':
				r.mark(RepairNewlineInString)
				r.out.WriteRune(' ')
				i++
				continue
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			case c == '\n' || c == '\r':
				r.mark(RepairNewlineInString)
				// Collapse CRLF and surrounding indentation into one space
				for i+1 < len(r.src) && unicode.IsSpace(r.src[i+1]) {
					i++
				}
				r.out.WriteRune(' ')
				continue
			}
			r.out.WriteRune(c)
			continue
		}

		switch c {
		case '"':
			inString = true
			expectKey = false
			r.out.WriteRune(c)
		case ',':
			if next := r.peekNonSpace(i + 1); next == '}' || next == ']' {
				r.mark(RepairTrailingComma)
				continue
			}
			expectKey = true
			r.out.WriteRune(c)
		case '{':
			expectKey = true
			r.out.WriteRune(c)
		case ':':
			r.out.WriteRune(c)
			expectKey = false
			i = r.value(i + 1)
		default:
			if expectKey && isIdentRune(c) {
				if j, ok := r.bareKey(i); ok {
					i = j
					expectKey = false
					continue
				}
			}
			if !unicode.IsSpace(c) {
				expectKey = false
			}
			r.out.WriteRune(c)
		}
	}
	return r.out.String()
}

// peekNonSpace returns the first non-space rune at or after i.
func (r *repairer) peekNonSpace(i int) rune {
	for ; i < len(r.src); i++ {
		if !unicode.IsSpace(r.src[i]) {
			return r.src[i]
		}
	}
	return 0
}

// bareKey quotes an unquoted identifier followed by ':'. It returns the
// index of the last consumed rune (the identifier's end).
func (r *repairer) bareKey(i int) (int, bool) {
	j := i
	for j < len(r.src) && isIdentRune(r.src[j]) {
		j++
	}
	if r.peekNonSpace(j) != ':' {
		return i, false
	}
	r.mark(RepairBareKey)
	r.out.WriteString(strconv.Quote(string(r.src[i:j])))
	return j - 1, true
}

// value handles the text after a ':' outside a string. Whitespace is
// copied, then a scalar is read up to the next ',', '}', ']' or newline.
// Numbers and JSON literals pass through, Python style booleans are
// lowercased and anything else is quoted. Returns the index of the last
// consumed rune.
func (r *repairer) value(i int) int {
	for i < len(r.src) && unicode.IsSpace(r.src[i]) {
		r.out.WriteRune(r.src[i])
		i++
	}
	if i >= len(r.src) {
		return i - 1
	}

	if c := r.src[i]; c == '"' || c == '{' || c == '[' {
		return i - 1
	}

	j := i
	for j < len(r.src) {
		c := r.src[j]
		if c == ',' || c == '}' || c == ']' || c == '\n' || c == '\r' {
			break
		}
		j++
	}
	raw := strings.TrimRightFunc(string(r.src[i:j]), unicode.IsSpace)
	trailing := string(r.src[i+len([]rune(raw)) : j])

	if raw == "" {
		return i - 1
	}
	if isNumber(raw) {
		r.out.WriteString(raw)
		r.out.WriteString(trailing)
		return j - 1
	}

	switch raw {
	case "true", "false", "null":
		r.out.WriteString(raw)
	case "True", "TRUE":
		r.mark(RepairBooleanCase)
		r.out.WriteString("true")
	case "False", "FALSE":
		r.mark(RepairBooleanCase)
		r.out.WriteString("false")
	default:
		r.mark(RepairBareValue)
		r.out.WriteString(strconv.Quote(raw))
	}
	r.out.WriteString(trailing)
	return j - 1
}

func isNumber(s string) bool {
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isIdentRune(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
