// Package arith implements a safe calculator for arithmetic expressions.
//
// The syntax is the arithmetic subset of Python: integer and float literals,
// the binary operators + - * / // % and **, unary + and -, and parentheses.
// "-2**2" is "-(2**2)", "2**3**2" is "2**(3**2)", and "7//2" is 3. Anything
// else, like names, calls, or comparisons, is rejected when parsing with an
// *UnsupportedError naming the construct, so an expression can never do more
// than arithmetic.
//
// Integers are exact and arbitrarily large up to a configurable limit. Floats
// are binary floating point with a configurable precision, by default that of
// a float64, and print the way Python prints them.
//
package arith
