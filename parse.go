package arith

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expr = num | Pos | Neg | Add | Sub | Mul | Div | FloorDiv | Mod | Pow | '(' Expr ')'
// Pos = '+' Expr
// Neg = '-' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// FloorDiv = Expr '//' Expr
// Mod = Expr '%' Expr
// Pow = Expr '**' Expr

// Expr is a parsed expression that can be evaluated with a context. An Expr
// is immutable and safe to share between goroutines.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// Parse parses an expression so it can be evaluated with a context. The given
// options are applied in order. Anything other than numbers, the arithmetic
// operators + - * / // % **, and parentheses is rejected: malformed input
// with an error matching ErrSyntax, and non-arithmetic constructs with an
// *UnsupportedError.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	if p.maxdepth <= 0 {
		p.maxdepth = DefaultMaxDepth
	}
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
		if n == nil {
			return nil, &EmptyExpressionError{Col: tok.pos}
		}
	default:
		return nil, itShouldNotHaveEndedThisWay(tok, -1)
	}
	return &Expr{n: n}, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxdepth {
		return nil, &SyntaxError{Col: scan.rune, Msg: "expression nested too deeply"}
	}
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, afterterm(tok)
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAt(scan)
			}
			n = &node{kind: prec.op, pos: tok.pos, left: n, right: rhs}
		case tokenClose, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		case tokenNum, tokenImag, tokenIdent, tokenString, tokenOpen:
			return nil, afterterm(tok)
		default:
			panic("arith: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		n = &node{kind: nodeNum, name: tok.text, pos: tok.pos}
	case tokenImag:
		return nil, &UnsupportedError{Col: tok.pos, Construct: "imaginary constant", Text: tok.text}
	case tokenString:
		return nil, &UnsupportedError{Col: tok.pos, Construct: "string constant", Text: tok.text}
	case tokenIdent:
		return nil, nameError(scan, p, tok)
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			if tok.text == "~" {
				return nil, &UnsupportedError{Col: tok.pos, Construct: "bitwise inversion", Text: tok.text}
			}
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x**-y -> x**(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyAt(scan)
		}
		n = &node{kind: prec.op, pos: tok.pos, left: rhs}
	case tokenOpen:
		switch tok.text {
		case "[":
			return nil, &UnsupportedError{Col: tok.pos, Construct: "list display", Text: tok.text}
		case "{":
			return nil, &UnsupportedError{Col: tok.pos, Construct: "set or dict display", Text: tok.text}
		}
		match := rightbracket(tok.text)
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose || end.text != closebrackets[match] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = rhs
	case tokenClose:
		// Let the caller decide what to do.
		scan.push(tok)
		return nil, nil
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("arith: unknown token: " + tok.String())
	}
	return n, nil
}

// emptyAt creates an error for an empty operand, using the pushed token that
// ended it.
func emptyAt(scan *lexer) error {
	tok := scan.must()
	scan.push(tok)
	return &EmptyExpressionError{Col: tok.pos, End: tok.text}
}

// nameError names the construct introduced by an identifier in operand
// position. The token following a name decides whether it is a call,
// attribute access, or subscript.
func nameError(scan *lexer, p *parsectx, tok lexToken) error {
	if c := lhskeywords[tok.text]; c != "" {
		return &UnsupportedError{Col: tok.pos, Construct: c, Text: tok.text}
	}
	switch tok.text {
	case "and", "or", "in", "is", "else":
		return &SyntaxError{Col: tok.pos, Msg: "unexpected keyword " + strconv.Quote(tok.text)}
	}
	c := "name"
	if next, err := scan.next(p.wseof); err == nil {
		switch next.text {
		case "(":
			c = "function call"
		case ".":
			c = "attribute access"
		case "[":
			c = "subscript"
		}
	}
	return &UnsupportedError{Col: tok.pos, Construct: c, Text: tok.text}
}

// afterterm creates an error for a token which cannot follow a complete term.
func afterterm(tok lexToken) error {
	switch tok.kind {
	case tokenIdent:
		if c := infixkeywords[tok.text]; c != "" {
			return &UnsupportedError{Col: tok.pos, Construct: c, Text: tok.text}
		}
	case tokenOp:
		if c := infixops[tok.text]; c != "" {
			return &UnsupportedError{Col: tok.pos, Construct: c, Text: tok.text}
		}
		return &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
	case tokenOpen:
		switch tok.text {
		case "(":
			return &UnsupportedError{Col: tok.pos, Construct: "function call", Text: tok.text}
		case "[":
			return &UnsupportedError{Col: tok.pos, Construct: "subscript", Text: tok.text}
		}
	}
	return &SyntaxError{Col: tok.pos, Msg: "missing operator before " + strconv.Quote(tok.text)}
}

// lhskeywords names the constructs introduced by keywords where an operand
// is expected.
var lhskeywords = map[string]string{
	"not":    "boolean operator",
	"lambda": "lambda",
	"await":  "await expression",
	"yield":  "yield expression",
	"True":   "boolean constant",
	"False":  "boolean constant",
	"None":   "None constant",

	"import":   "statement",
	"from":     "statement",
	"def":      "statement",
	"class":    "statement",
	"return":   "statement",
	"del":      "statement",
	"pass":     "statement",
	"raise":    "statement",
	"global":   "statement",
	"nonlocal": "statement",
	"assert":   "statement",
	"if":       "statement",
	"elif":     "statement",
	"while":    "statement",
	"for":      "statement",
	"with":     "statement",
	"try":      "statement",
	"except":   "statement",
	"finally":  "statement",
	"break":    "statement",
	"continue": "statement",
	"async":    "statement",
}

// infixkeywords names the constructs introduced by keywords following a term.
var infixkeywords = map[string]string{
	"if":    "conditional expression",
	"and":   "boolean operator",
	"or":    "boolean operator",
	"not":   "comparison",
	"in":    "comparison",
	"is":    "comparison",
	"for":   "comprehension",
	"async": "comprehension",
}

// infixops names the constructs introduced by non-arithmetic operators
// following a term.
var infixops = map[string]string{
	"<<": "shift",
	">>": "shift",
	"&":  "bitwise operator",
	"|":  "bitwise operator",
	"^":  "bitwise operator",
	"<":  "comparison",
	">":  "comparison",
	"<=": "comparison",
	">=": "comparison",
	"==": "comparison",
	"!=": "comparison",
	"@":  "matrix multiplication",
	"=":  "assignment",
	":=": "assignment expression",
	".":  "attribute access",
	",":  "tuple",
	";":  "multiple statements",
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := strings.IndexRune(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("arith: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok lexToken, match int) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: ""}
	case tokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.pos, Left: leftbracket(match), Right: tok.text}
	default:
		panic("arith: it really should not have ended this way: " + tok.String())
	}
}

// String creates a string representation of the parsed expression, with
// parentheses grouping each term.
func (e *Expr) String() string {
	return e.n.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "//":
		return operator{5, false, nodeFloorDiv}
	case "%":
		return operator{5, false, nodeMod}
	case "**":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodePos}
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
