package pattern

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokNumber
	tokComma
	tokDash
	tokColon
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of segment"
	case tokWord:
		return "word"
	case tokNumber:
		return "number"
	case tokComma:
		return `","`
	case tokDash:
		return `"-"`
	case tokColon:
		return `":"`
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the full pattern
}

// lex splits one segment into tokens. base is the segment's offset in the
// full pattern string so positions can be reported against the whole input.
func lex(full, segment string, base int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(segment) {
		c := segment[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isLetter(c):
			j := i
			for j < len(segment) && isLetter(segment[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: segment[i:j], pos: base + i})
			i = j
		case isDigit(c):
			j := i
			for j < len(segment) && isDigit(segment[j]) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: segment[i:j], pos: base + i})
			i = j
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: base + i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokDash, text: "-", pos: base + i})
			i++
		case c == ':' || c == '.':
			toks = append(toks, token{kind: tokColon, text: string(c), pos: base + i})
			i++
		default:
			return nil, &SyntaxError{
				Pattern: full,
				Offset:  base + i,
				Near:    segment[i:],
				Reason:  "unexpected character",
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: base + len(segment)})
	return toks, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
