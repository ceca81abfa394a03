package arith

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or real literal.
	tokenNum
	// tokenImag is an imaginary literal like 2j. It is never valid, but
	// it is scanned so the parser can name it.
	tokenImag
	// tokenIdent is a name or keyword.
	tokenIdent
	// tokenString is a quoted string literal, including its quotes.
	tokenString
	// tokenOp is an operator or punctuation, e.g. + or ** or ==.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenImag:
		return "Imag"
	case tokenIdent:
		return "Ident"
	case tokenString:
		return "String"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// OpRunes contains the runes which begin an operator token. Only + - * / %
// and the pairs // and ** are arithmetic; the rest are scanned so that
// unsupported constructs can be reported by name.
const OpRunes = "+-*/%<>=!&|^~@.,;:"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

// pairops lists the two-rune operators. The first rune of each is in OpRunes.
var pairops = []string{"//", "**", "<<", ">>", "<=", ">=", "==", "!=", ":="}

func byteidcs(s string) []string {
	v := make([]string, len(s))
	for i, r := range s {
		v[i] = string(r)
	}
	return v
}

var (
	operstrs      = byteidcs(OpRunes)
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	p    lexToken
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("arith: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("arith: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered
// before any non-whitespace characters, the result is an EOF token with a nil
// error. Subsequent times, if the EOF token is not pushed, the result is an
// empty token with io.EOF. Whitespace runes in wseof are treated as EOF.
func (l *lexer) next(wseof string) (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			if strings.ContainsRune(wseof, r) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			tok.pos++
			continue
		case isdigit(r):
			l.unreadRune()
			kind, err := l.scanNum(tok.pos)
			if err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = kind
			return tok, nil
		case r == '.':
			// .5 is a number, but . on its own is attribute access.
			d, err := l.readRune()
			if err == nil {
				l.unreadRune()
			}
			if err == nil && isdigit(d) {
				l.buf.WriteRune(r)
				kind, err := l.scanNum(tok.pos)
				if err != nil {
					return tok, err
				}
				tok.text = l.buf.String()
				tok.kind = kind
				return tok, nil
			}
			tok.text = "."
			tok.kind = tokenOp
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenIdent
			return tok, nil
		case r == '\'', r == '"':
			l.buf.WriteRune(r)
			if err := l.scanString(r, tok.pos); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenString
			return tok, nil
		default:
			if k := strings.IndexRune(OpRunes, r); k >= 0 {
				op := l.scanOp(operstrs[k])
				if op == "!" {
					// ! only exists as part of !=.
					l.buf.WriteRune(r)
					return tok, l.error("", tok.pos, "")
				}
				tok.text = op
				tok.kind = tokenOp
				return tok, nil
			}
			if k := strings.IndexRune(OpenBrackets, r); k >= 0 {
				tok.text = openbrackets[k]
				tok.kind = tokenOpen
				return tok, nil
			}
			if k := strings.IndexRune(CloseBrackets, r); k >= 0 {
				tok.text = closebrackets[k]
				tok.kind = tokenClose
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("", tok.pos, "")
		}
	}
}

// scanOp extends a one-rune operator to a two-rune operator where possible.
func (l *lexer) scanOp(first string) string {
	r, err := l.readRune()
	if err != nil {
		return first
	}
	op := first + string(r)
	for _, p := range pairops {
		if p == op {
			return op
		}
	}
	l.unreadRune()
	return first
}

// scanNum scans the longest run of runes which could belong to a number
// literal, then checks that the run is a valid literal. The buffer may already
// hold a leading dot.
func (l *lexer) scanNum(col int) (tokenKind, error) {
	var prev rune
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return tokenNone, err
		}
		switch {
		case r == '_', r == '.', isdigit(r), unicode.IsLetter(r):
			// Letters are collected so that 1abc is one bad token rather than
			// a number followed by a name.
		case (r == '+' || r == '-') && (prev == 'e' || prev == 'E') && !prefixed(l.buf.String()):
			// Exponent sign.
		default:
			l.unreadRune()
			return l.checkNum(col)
		}
		l.buf.WriteRune(r)
		prev = r
	}
	return l.checkNum(col)
}

func (l *lexer) checkNum(col int) (tokenKind, error) {
	s := l.buf.String()
	if n := len(s); n > 1 && (s[n-1] == 'j' || s[n-1] == 'J') {
		if prefixed(s) {
			return tokenNone, l.error("number", col, "invalid imaginary literal")
		}
		if reason := checkDecimal(s[:n-1]); reason != "" {
			return tokenNone, l.error("number", col, reason)
		}
		return tokenImag, nil
	}
	var reason string
	if prefixed(s) {
		reason = checkPrefixed(s)
	} else {
		reason = checkDecimal(s)
	}
	if reason != "" {
		return tokenNone, l.error("number", col, reason)
	}
	return tokenNum, nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

// scanString scans a string literal up to the closing quote q. The buffer
// already holds the opening quote.
func (l *lexer) scanString(q rune, col int) error {
	esc := false
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l.error("string", col, "unterminated string literal")
			}
			return err
		}
		if r == '\n' {
			l.unreadRune()
			return l.error("string", col, "unterminated string literal")
		}
		l.buf.WriteRune(r)
		switch {
		case esc:
			esc = false
		case r == '\\':
			esc = true
		case r == q:
			return nil
		}
	}
}

func (l *lexer) error(kind string, col int, reason string) error {
	return &LexError{
		Text:   l.buf.String(),
		Kind:   kind,
		Col:    col,
		Reason: reason,
	}
}

func isdigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// prefixed reports whether a number literal has a base prefix.
func prefixed(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

// digitrun scans a run of digits starting at s[i], allowing single
// underscores between digits. The result is the index after the run, or -1 if
// the run is empty or misuses underscores.
func digitrun(s string, i int, ok func(byte) bool) int {
	start := i
	for i < len(s) {
		switch {
		case ok(s[i]):
			i++
		case s[i] == '_' && i > start && i+1 < len(s) && ok(s[i+1]):
			i++
		default:
			if i == start {
				return -1
			}
			return i
		}
	}
	if i == start {
		return -1
	}
	return i
}

func decdigit(c byte) bool { return '0' <= c && c <= '9' }

// checkDecimal validates a decimal integer or real literal. The result is the
// reason the literal is invalid, or the empty string if it is valid.
func checkDecimal(s string) string {
	i, whole, frac := 0, false, false
	if i < len(s) && decdigit(s[i]) {
		if i = digitrun(s, i, decdigit); i < 0 {
			return "invalid decimal literal"
		}
		whole = true
	}
	real := false
	if i < len(s) && s[i] == '.' {
		real = true
		i++
		if i < len(s) && decdigit(s[i]) {
			if i = digitrun(s, i, decdigit); i < 0 {
				return "invalid decimal literal"
			}
			frac = true
		}
	}
	if !whole && !frac {
		return "invalid decimal literal"
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		real = true
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if i = digitrun(s, i, decdigit); i < 0 {
			return "invalid exponent"
		}
	}
	if i != len(s) {
		return "invalid decimal literal"
	}
	if !real && s[0] == '0' && strings.Trim(s, "0_") != "" {
		return "leading zeros in decimal integer literals are not permitted"
	}
	return ""
}

// checkPrefixed validates a hexadecimal, octal, or binary literal.
func checkPrefixed(s string) string {
	var ok func(byte) bool
	var base string
	switch s[1] {
	case 'x', 'X':
		ok = func(c byte) bool {
			return decdigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
		}
		base = "hexadecimal"
	case 'o', 'O':
		ok = func(c byte) bool { return '0' <= c && c <= '7' }
		base = "octal"
	default:
		ok = func(c byte) bool { return c == '0' || c == '1' }
		base = "binary"
	}
	i := 2
	if i < len(s) && s[i] == '_' {
		// An underscore may follow the base prefix.
		i++
	}
	if i = digitrun(s, i, ok); i != len(s) {
		return "invalid " + base + " literal"
	}
	return ""
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "string", or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the position of the start of the token.
	Col int
	// Reason optionally describes what is wrong with the token.
	Reason string
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	var s string
	if err.Kind == "" {
		s = "invalid token at " + pos + ": " + err.Text
	} else {
		s = "invalid " + err.Kind + " token at " + pos + ": " + err.Text
	}
	if err.Reason != "" {
		s += " (" + err.Reason + ")"
	}
	return s
}

func (err *LexError) Pos() int {
	return err.Col
}

// Is makes LexError match ErrSyntax.
func (err *LexError) Is(target error) bool {
	return target == ErrSyntax
}
