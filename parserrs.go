package arith

import (
	"errors"
	"strconv"
)

// Error kinds. Every error returned by Parse or Eval matches exactly one of
// these with errors.Is.
var (
	// ErrSyntax matches malformed input: bad tokens, dangling operators,
	// unbalanced brackets, and the like.
	ErrSyntax = errors.New("syntax error")
	// ErrUnsupported matches well-formed constructs that are not arithmetic,
	// e.g. names, calls, or comparisons.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrDivisionByZero matches division, floor division, or modulus by zero,
	// and zero raised to a negative power.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow matches results too large to represent.
	ErrOverflow = errors.New("overflow")
	// ErrDomain matches operations whose result is not a real number.
	ErrDomain = errors.New("math domain error")
)

// OperatorError is an error indicating an operator token that is not
// understood by the parser in its position. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// Is makes OperatorError match ErrSyntax.
func (err *OperatorError) Is(target error) bool {
	return target == ErrSyntax
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the bracket.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// Is makes BracketError match ErrSyntax.
func (err *BracketError) Is(target error) bool {
	return target == ErrSyntax
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// Is makes EmptyExpressionError match ErrSyntax.
func (err *EmptyExpressionError) Is(target error) bool {
	return target == ErrSyntax
}

// SyntaxError is any other malformed input, such as two terms with no
// operator between them.
type SyntaxError struct {
	// Col is the position of the offending token.
	Col int
	// Msg describes the problem.
	Msg string
}

func (err *SyntaxError) Error() string {
	return errpos(err.Col, err.Msg)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// Is makes SyntaxError match ErrSyntax.
func (err *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// UnsupportedError is an error indicating a construct outside arithmetic,
// like a name, a function call, or a comparison. It implements InputError.
type UnsupportedError struct {
	// Col is the position of the token that introduced the construct.
	Col int
	// Construct names the kind of construct, e.g. "function call".
	Construct string
	// Text is the source text of the token that introduced the construct.
	Text string
}

func (err *UnsupportedError) Error() string {
	if err.Text == "" {
		return errpos(err.Col, "unsupported "+err.Construct)
	}
	return errpos(err.Col, "unsupported "+err.Construct+": "+strconv.Quote(err.Text))
}

func (err *UnsupportedError) Pos() int {
	return err.Col
}

// Is makes UnsupportedError match ErrUnsupported.
func (err *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*UnsupportedError)(nil)
	_ InputError = (*LexError)(nil)
	_ InputError = (*DivisionByZeroError)(nil)
	_ InputError = (*OverflowError)(nil)
	_ InputError = (*DomainError)(nil)
)
