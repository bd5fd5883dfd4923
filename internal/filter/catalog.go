package filter

import "strings"

// ColumnType is the semantic type of a filterable column.
type ColumnType string

const (
	TypeText   ColumnType = "text"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeJSONB  ColumnType = "jsonb"
)

// Filter operator identifiers. The json_ variants are only legal on JSONB
// columns and address a nested field inside the column's object.
const (
	OpEquals          = "equals"
	OpContains        = "contains"
	OpStartsWith      = "starts_with"
	OpGreaterThan     = "greater_than"
	OpLessThan        = "less_than"
	OpJSONEquals      = "json_equals"
	OpJSONContains    = "json_contains"
	OpJSONExists      = "json_exists"
	OpJSONGreaterThan = "json_greater_than"
	OpJSONLessThan    = "json_less_than"
)

// Column describes one filterable call-log column.
type Column struct {
	Key   string
	Label string
	Type  ColumnType
}

// Columns lists the filterable columns of pype_voice_call_logs.
var Columns = []Column{
	{Key: "customer_number", Label: "Customer Number", Type: TypeText},
	{Key: "duration_seconds", Label: "Duration (seconds)", Type: TypeNumber},
	{Key: "avg_latency", Label: "Avg Latency (ms)", Type: TypeNumber},
	{Key: "call_started_at", Label: "Date", Type: TypeDate},
	{Key: "call_ended_reason", Label: "Status", Type: TypeText},
	{Key: "metadata", Label: "Metadata", Type: TypeJSONB},
	{Key: "transcription_metrics", Label: "Transcription", Type: TypeJSONB},
}

var operatorsByType = map[ColumnType][]string{
	TypeText:   {OpEquals, OpContains, OpStartsWith},
	TypeNumber: {OpEquals, OpGreaterThan, OpLessThan},
	TypeDate:   {OpEquals, OpGreaterThan, OpLessThan},
	TypeJSONB:  {OpJSONEquals, OpJSONContains, OpJSONExists, OpJSONGreaterThan, OpJSONLessThan},
}

// ColumnByKey looks up a column descriptor by key.
func ColumnByKey(key string) (Column, bool) {
	for _, col := range Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// TypeOf returns the semantic type of a column, or "" for unknown columns.
func TypeOf(key string) ColumnType {
	col, ok := ColumnByKey(key)
	if !ok {
		return ""
	}
	return col.Type
}

// IsJSONBColumn reports whether a column holds a nested JSON object.
func IsJSONBColumn(key string) bool {
	return TypeOf(key) == TypeJSONB
}

// OperatorsForColumn returns the operator set legal for a column.
func OperatorsForColumn(key string) []string {
	ops, ok := operatorsByType[TypeOf(key)]
	if !ok {
		return nil
	}
	return append([]string(nil), ops...)
}

// OperatorAllowed reports whether an operator is legal for a column.
func OperatorAllowed(column, operator string) bool {
	for _, op := range operatorsByType[TypeOf(column)] {
		if op == operator {
			return true
		}
	}
	return false
}

// TextExpr returns the text-extraction address of a column: plain columns are
// addressed directly, JSONB fields with ->> so the value coerces to text.
func TextExpr(column, jsonField string) string {
	if jsonField == "" {
		return column
	}
	return column + "->>'" + quoteField(jsonField) + "'"
}

// RawExpr returns the raw address of a column: JSONB fields with -> so the
// value keeps its native JSON type.
func RawExpr(column, jsonField string) string {
	if jsonField == "" {
		return column
	}
	return column + "->'" + quoteField(jsonField) + "'"
}

// quoteField escapes single quotes in a user-supplied JSON field name.
func quoteField(field string) string {
	return strings.ReplaceAll(field, "'", "''")
}
