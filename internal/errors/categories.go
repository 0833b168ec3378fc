package errors

// Category-specific error constructors for plan construction and decoding

// Builder errors

// IncompleteBuilderError reports a plan node builder whose required field
// was never set.
func IncompleteBuilderError(nodeType, field string) *Error {
	return Newf(ObjectNotInPrerequisiteState, "incomplete %s builder: %s was not set", nodeType, field).
		WithRoutine("Build").
		WithHint("Call the corresponding setter before Build.")
}

// BuilderConsumedError reports a second Build on a single-use builder.
func BuilderConsumedError(nodeType string) *Error {
	return Newf(ObjectNotInPrerequisiteState, "%s builder was already built", nodeType).
		WithRoutine("Build").
		WithDetail("A builder produces exactly one plan node.")
}

// InvalidBuilderArgumentError reports a value a builder cannot accept.
func InvalidBuilderArgumentError(nodeType, field, reason string) *Error {
	return Newf(InvalidParameterValue, "invalid %s for %s builder: %s", field, nodeType, reason).
		WithRoutine("Build")
}

// Expression errors

// InvalidExpressionArityError reports an expression constructed with the
// wrong number of children.
func InvalidExpressionArityError(exprType string, want string, got int) *Error {
	return Newf(InvalidParameterValue, "%s expects %s children, got %d", exprType, want, got)
}

// ForeignExpressionError reports a child expression owned by another arena.
func ForeignExpressionError(exprType string) *Error {
	return Newf(InvalidParameterValue, "%s child belongs to a different arena", exprType).
		WithHint("Copy the expression into this arena first.")
}

// Decoding errors

// MalformedPlanError reports a plan or expression document with a missing
// field, a wrong shape or an unexpected discriminant.
func MalformedPlanError(format string, args ...interface{}) *Error {
	return Newf(DataCorrupted, format, args...).WithRoutine("FromJSON")
}

// InvalidPlanJSONError reports input that is not parsable JSON.
func InvalidPlanJSONError(err error, where string) *Error {
	return Wrapf(err, InvalidJSONText, "invalid plan document").
		WithRoutine("FromJSON").
		WithWhere(where)
}

// UnknownPlanNodeTypeError reports an unrecognized plan node discriminant.
func UnknownPlanNodeTypeError(name string) *Error {
	return MalformedPlanError("unknown plan node type %q", name)
}

// UnknownExpressionTypeError reports an unrecognized expression discriminant.
func UnknownExpressionTypeError(name string) *Error {
	return MalformedPlanError("unknown expression type %q", name)
}

// ExpressionTooDeepError reports an expression nested beyond the decode limit.
func ExpressionTooDeepError(limit int) *Error {
	return Newf(StatementTooComplex, "expression nesting exceeds limit of %d", limit).
		WithRoutine("FromJSON")
}

// PlanTooDeepError reports a plan tree nested beyond the decode limit.
func PlanTooDeepError(limit int) *Error {
	return Newf(StatementTooComplex, "plan nesting exceeds limit of %d", limit).
		WithRoutine("FromJSON")
}

// IsMalformedPlan reports whether err came from decoding a bad document.
func IsMalformedPlan(err error) bool {
	return IsError(err, DataCorrupted) || IsError(err, InvalidJSONText)
}

// IsIncompleteBuilder reports whether err came from a builder missing a
// required field or reused after Build.
func IsIncompleteBuilder(err error) bool {
	return IsError(err, ObjectNotInPrerequisiteState)
}

// Catalog errors

// SchemaNotFoundError reports a missing namespace.
func SchemaNotFoundError(schemaName string) *Error {
	return Newf(UndefinedObject, "schema \"%s\" does not exist", schemaName).
		WithTable(schemaName, "")
}

// SchemaAlreadyExistsError reports a duplicate namespace.
func SchemaAlreadyExistsError(schemaName string) *Error {
	return Newf(DuplicateSchema, "schema \"%s\" already exists", schemaName).
		WithTable(schemaName, "")
}

// DuplicateColumnError reports a table definition listing a column twice.
func DuplicateColumnError(columnName, tableName string) *Error {
	return Newf(DuplicateColumn, "column \"%s\" specified more than once", columnName).
		WithTable("", tableName).
		WithColumn(columnName)
}

// DuplicateIndexError reports an index name already taken.
func DuplicateIndexError(indexName string) *Error {
	return Newf(DuplicateObject, "relation \"%s\" already exists", indexName)
}

// IndexNotFoundError reports a missing index.
func IndexNotFoundError(indexName string) *Error {
	return Newf(UndefinedObject, "index \"%s\" does not exist", indexName)
}
