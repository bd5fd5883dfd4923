package models

import "time"

// Predicate operators understood by the backend query layer.
const (
	OpEq    = "eq"
	OpNeq   = "neq"
	OpGt    = "gt"
	OpLt    = "lt"
	OpGte   = "gte"
	OpLte   = "lte"
	OpILike = "ilike"
	OpIs    = "is"
	OpNotIs = "not.is"
)

// Predicate is one backend query condition in (column, operator, value) form.
// Column may be a plain column name or a JSONB path expression.
type Predicate struct {
	Column   string
	Operator string
	Value    interface{}
}

// DistinctProjection requests de-duplication and sorting of results on a
// single projected value instead of row identity.
type DistinctProjection struct {
	Column    string
	JSONField string
	SortOrder SortOrder
}

// OrderBy is the result ordering of a query.
type OrderBy struct {
	Column    string
	Ascending bool
}

// Query is a fully translated call-log query: AND-combined predicates, an
// optional OR-expression string covering the user's OR-grouped filters, and
// an optional distinct projection surfaced separately from the predicates.
type Query struct {
	Predicates   []Predicate
	OrExpression string
	Distinct     *DistinctProjection
	OrderBy      OrderBy
	Limit        int
	Offset       int
}

// QueryResult holds fetched rows with column order preserved.
type QueryResult struct {
	Columns  []string
	Rows     []map[string]interface{}
	Duration time.Duration
}
