package errors

// PostgreSQL Error Codes (SQLSTATE)
// Based on PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
// Only the classes raised by plan construction, plan decoding and catalog
// lookups are listed.

// Class 00 - Successful Completion
const (
	SuccessfulCompletion = "00000"
)

// Class 0A - Feature Not Supported
const (
	FeatureNotSupported = "0A000"
)

// Class 22 - Data Exception
const (
	DataException         = "22000"
	InvalidParameterValue = "22023"
	InvalidJSONText       = "22032"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	UndefinedColumn = "42703"
	UndefinedTable  = "42P01"
	UndefinedObject = "42704"
	DuplicateColumn = "42701"
	DuplicateSchema = "42P06"
	DuplicateTable  = "42P07"
	DuplicateObject = "42710"
)

// Class 54 - Program Limit Exceeded
const (
	ProgramLimitExceeded = "54000"
	StatementTooComplex  = "54001"
)

// Class 55 - Object Not In Prerequisite State
const (
	ObjectNotInPrerequisiteState = "55000"
)

// Class XX - Internal Error
const (
	InternalError = "XX000"
	DataCorrupted = "XX001"
)
