package types

import "fmt"

// ErrorCode identifies a JSONata diagnostic. Codes follow the reference
// implementation's taxonomy so that host applications can match on them
// independent of message wording.
type ErrorCode string

// Error codes. Grouped the way the reference source groups them: S0xxx is
// lexing/parsing, T0xxx/T1xxx/T2xxx is evaluation-time type errors, D0xxx/
// D1xxx/D2xxx/D3xxx is other dynamic errors, U0xxx is runtime lookup errors.
const (
	// Lexer
	ErrStringNotClosed  ErrorCode = "S0101"
	ErrNumberOutOfRange ErrorCode = "S0102"
	ErrUnknownEscape    ErrorCode = "S0103"
	ErrUnexpectedEnd    ErrorCode = "S0104"
	ErrNameNotClosed    ErrorCode = "S0105"
	ErrCommentNotClosed ErrorCode = "S0106"

	// Parser
	ErrSyntaxError       ErrorCode = "S0201"
	ErrExpectedToken     ErrorCode = "S0202"
	ErrExpectedKeyword   ErrorCode = "S0203"
	ErrEmptyRegex        ErrorCode = "S0301"
	ErrRegexNotClosed    ErrorCode = "S0302"
	ErrBadParamList      ErrorCode = "S0401"
	ErrAssignToNonVar    ErrorCode = "S0402"
	ErrBadFocusTarget    ErrorCode = "S0403"
	ErrBadIndexTarget    ErrorCode = "S0404"
	ErrParentNotResolved ErrorCode = "S0217"
	ErrEmptyExpression   ErrorCode = "S0500"

	// Type errors
	ErrArgumentCountMismatch ErrorCode = "T0410"
	ErrCannotConvertNumber   ErrorCode = "T1001"
	ErrCannotConvertString   ErrorCode = "T1002"
	ErrNonStringKey          ErrorCode = "T1003"
	ErrNotCallable           ErrorCode = "T1005"
	ErrArithmeticNonNumber   ErrorCode = "T2001"
	ErrRangeBoundNotInteger  ErrorCode = "T2003"
	ErrRangeBoundNotNumber   ErrorCode = "T2004"
	ErrChainNotCallable      ErrorCode = "T2006"
	ErrSortKeyStringMismatch ErrorCode = "T2007"
	ErrSortKeyBadType        ErrorCode = "T2008"
	ErrCompareMixedTypes     ErrorCode = "T2009"
	ErrCompareBadType        ErrorCode = "T2010"

	// Dynamic/runtime errors
	ErrNumberNonFinite        ErrorCode = "D1001"
	ErrInvokeNonFunction      ErrorCode = "D1002"
	ErrDuplicateKey           ErrorCode = "D1009"
	ErrRangeTooLarge          ErrorCode = "D2014"
	ErrStackOverflow          ErrorCode = "D2002"
	ErrSerializeNonFinite     ErrorCode = "D3001"
	ErrTransformUnsupported   ErrorCode = "D3013"
	ErrRecursiveDefinition    ErrorCode = "D3010"
	ErrHOFArgumentShape       ErrorCode = "T0410"
	ErrReduceInsufficientArgs ErrorCode = "D3050"
	ErrTypeMismatch           ErrorCode = "D3070"
	ErrSingleMultipleMatches  ErrorCode = "D3138"
	ErrSingleNoMatch          ErrorCode = "D3139"
	ErrEncodeURISurrogate     ErrorCode = "D3140"
	ErrArrayElementNotNumber  ErrorCode = "T0412"
	ErrNegativeLimit          ErrorCode = "D3020"
	ErrEmptyPattern           ErrorCode = "D3021"
	ErrReplaceLimitNegative   ErrorCode = "D3011"
	ErrZeroLengthMatch        ErrorCode = "D1004"
	ErrReplacementNotString   ErrorCode = "D3012"
	ErrSqrtDomain             ErrorCode = "D3060"
	ErrPowerDomain            ErrorCode = "D3061"
	ErrRadixRange             ErrorCode = "D3100"
	ErrDateTimeParse          ErrorCode = "D3110"
	ErrFunctionThrown         ErrorCode = "D3137"
	ErrAssertionFailed        ErrorCode = "D3141"
	ErrEvalSyntax             ErrorCode = "D3120"

	// Runtime lookup
	ErrUndefinedVariable ErrorCode = "U1001"
	ErrUndefinedFunction ErrorCode = "U1002"
)

// Error is the structured diagnostic type raised by every stage of
// compilation and evaluation. A single Error always propagates to the
// caller; there is no partial-result-plus-error return anywhere in this
// package.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Value    interface{}
	Err      error
}

// NewError creates an Error with no position information (position -1).
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Position: -1}
}

// NewErrorAt creates an Error carrying a source position.
func NewErrorAt(code ErrorCode, message string, position int) *Error {
	return &Error{Code: code, Message: message, Position: position}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes a wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken attaches the offending token's lexeme.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithValue attaches the offending runtime value.
func (e *Error) WithValue(v interface{}) *Error {
	e.Value = v
	return e
}

// WithCause wraps an underlying error (e.g. from a native function).
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
