package models

// OperationType discriminates the two kinds of view operations.
type OperationType string

const (
	OperationFilter   OperationType = "filter"
	OperationDistinct OperationType = "distinct"
)

// SortOrder is the direction of a distinct projection's sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// GroupLogic selects how the user-chosen filters of one view combine.
// Subject predicates are always AND-combined regardless of group logic.
type GroupLogic string

const (
	LogicAnd GroupLogic = "AND"
	LogicOr  GroupLogic = "OR"
)

// Operation is one unit of query composition: either a filter condition or a
// distinct projection, carrying an explicit execution order. Operator, Value
// and JSONField apply to filters; SortOrder applies to distinct projections.
type Operation struct {
	ID        string        `json:"id" yaml:"id"`
	Type      OperationType `json:"type" yaml:"type"`
	Order     int           `json:"order" yaml:"order"`
	Column    string        `json:"column" yaml:"column"`
	Operator  string        `json:"operation,omitempty" yaml:"operation,omitempty"`
	Value     string        `json:"value,omitempty" yaml:"value,omitempty"`
	JSONField string        `json:"jsonField,omitempty" yaml:"jsonField,omitempty"`
	SortOrder SortOrder     `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
}

// LegacyDistinctConfig is the old single distinct/sort configuration that
// predates distinct operations in the operation list. At most one exists per
// saved view; it only appears as migration input.
type LegacyDistinctConfig struct {
	Column    string    `json:"column" yaml:"column"`
	JSONField string    `json:"jsonField,omitempty" yaml:"jsonField,omitempty"`
	Order     SortOrder `json:"order" yaml:"order"`
}
