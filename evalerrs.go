package arith

import "math/big"

// DivisionByZeroError is an error from dividing by zero or raising zero to a
// negative power. It implements InputError.
type DivisionByZeroError struct {
	// Col is the position of the operator.
	Col int
	// Op names the operation: "division", "floor division", "modulo", or
	// "power".
	Op string
}

func (err *DivisionByZeroError) Error() string {
	if err.Op == "power" {
		return errpos(err.Col, "zero cannot be raised to a negative power")
	}
	return errpos(err.Col, err.Op+" by zero")
}

func (err *DivisionByZeroError) Pos() int {
	return err.Col
}

// Is makes DivisionByZeroError match ErrDivisionByZero.
func (err *DivisionByZeroError) Is(target error) bool {
	return target == ErrDivisionByZero
}

// OverflowError is an error from an operation whose result would exceed the
// context's magnitude limit. It implements InputError.
type OverflowError struct {
	// Col is the position of the operator or literal.
	Col int
	// Op names the operation, e.g. "power" or "integer literal".
	Op string
}

func (err *OverflowError) Error() string {
	return errpos(err.Col, "result of "+err.Op+" too large")
}

func (err *OverflowError) Pos() int {
	return err.Col
}

// Is makes OverflowError match ErrOverflow.
func (err *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}

// DomainError is an error returned when an operator is applied to operands
// outside its domain, such as a negative base with a fractional exponent,
// whose result would be complex. It implements InputError.
type DomainError struct {
	// Col is the position of the operator.
	Col int
	// X is the out-of-domain operand.
	X *big.Float
	// Func is the operator.
	Func string
}

func (err *DomainError) Error() string {
	r := reprFloat(err.X) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	return errpos(err.Col, r)
}

func (err *DomainError) Pos() int {
	return err.Col
}

// Is makes DomainError match ErrDomain.
func (err *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// setpos fills in the position of an error from an operation.
func setpos(err error, col int) error {
	switch err := err.(type) {
	case *DivisionByZeroError:
		err.Col = col
	case *OverflowError:
		err.Col = col
	case *DomainError:
		err.Col = col
	}
	return err
}
