package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Error represents a PostgreSQL-compatible error with SQLSTATE code
type Error struct {
	Code    string // SQLSTATE code
	Message string // Primary error message
	Detail  string // Optional detailed error message
	Hint    string // Optional hint message
	Where   string // Context where error occurred
	Schema  string // Schema name if applicable
	Table   string // Table name if applicable
	Column  string // Column name if applicable
	Routine string // Source code routine name
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Routine != "" {
		msg = e.Routine + ": " + msg
	}
	if e.Where != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Where)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (SQLSTATE %s) DETAIL: %s", msg, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", msg, e.Code)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the wrapped cause so pkg/errors.Cause can walk through it.
func (e *Error) Cause() error {
	return e.cause
}

// New creates a new Error with the given code and message
func New(code string, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrapf creates a new Error whose cause is err annotated with the
// formatted context. The cause keeps a stack trace.
func Wrapf(err error, code string, format string, args ...interface{}) *Error {
	e := Newf(code, format, args...)
	if err != nil {
		e.cause = pkgerrors.WithStack(err)
		e.Detail = err.Error()
	}
	return e
}

// WithDetail adds detail to the error
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithDetailf adds formatted detail to the error
func (e *Error) WithDetailf(format string, args ...interface{}) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint adds a hint to the error
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithTable sets the table name
func (e *Error) WithTable(schema, table string) *Error {
	e.Schema = schema
	e.Table = table
	return e
}

// WithColumn sets the column name
func (e *Error) WithColumn(column string) *Error {
	e.Column = column
	return e
}

// WithWhere sets the context where the error occurred
func (e *Error) WithWhere(where string) *Error {
	e.Where = where
	return e
}

// WithRoutine records the operation that raised the error.
func (e *Error) WithRoutine(routine string) *Error {
	e.Routine = routine
	return e
}

// Common error constructors

// UndefinedTableError creates an undefined table error
func UndefinedTableError(tableName string) *Error {
	return Newf(UndefinedTable, "relation \"%s\" does not exist", tableName).
		WithTable("", tableName)
}

// UndefinedColumnError creates an undefined column error
func UndefinedColumnError(columnName string, tableName string) *Error {
	return Newf(UndefinedColumn, "column \"%s\" does not exist", columnName).
		WithTable("", tableName).
		WithColumn(columnName)
}

// DuplicateTableError creates a duplicate table error
func DuplicateTableError(tableName string) *Error {
	return Newf(DuplicateTable, "relation \"%s\" already exists", tableName).
		WithTable("", tableName)
}

// InternalErrorf creates an internal error
func InternalErrorf(format string, args ...interface{}) *Error {
	return Newf(InternalError, format, args...)
}

// IsError checks if an error is an *Error with a specific code
func IsError(err error, code string) bool {
	qErr := asError(err)
	return qErr != nil && qErr.Code == code
}

// GetError attempts to extract an *Error from any error
func GetError(err error) *Error {
	if err == nil {
		return nil
	}
	if qErr := asError(err); qErr != nil {
		return qErr
	}
	// Wrap generic errors as internal errors
	return Wrapf(err, InternalError, "%v", err)
}

func asError(err error) *Error {
	var qErr *Error
	if pkgerrors.As(err, &qErr) {
		return qErr
	}
	return nil
}
