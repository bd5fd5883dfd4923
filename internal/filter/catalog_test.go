package filter

import (
	"reflect"
	"testing"
)

func TestOperatorsForColumn(t *testing.T) {
	tests := []struct {
		column string
		want   []string
	}{
		{"customer_number", []string{OpEquals, OpContains, OpStartsWith}},
		{"duration_seconds", []string{OpEquals, OpGreaterThan, OpLessThan}},
		{"call_started_at", []string{OpEquals, OpGreaterThan, OpLessThan}},
		{"metadata", []string{OpJSONEquals, OpJSONContains, OpJSONExists, OpJSONGreaterThan, OpJSONLessThan}},
		{"no_such_column", nil},
	}

	for _, tt := range tests {
		got := OperatorsForColumn(tt.column)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("OperatorsForColumn(%q): want %v, got %v", tt.column, tt.want, got)
		}
	}
}

func TestOperatorAllowed(t *testing.T) {
	if !OperatorAllowed("metadata", OpJSONExists) {
		t.Error("json_exists must be allowed on metadata")
	}
	if OperatorAllowed("customer_number", OpJSONExists) {
		t.Error("json_exists must not be allowed on a text column")
	}
	if OperatorAllowed("no_such_column", OpEquals) {
		t.Error("No operator is legal on an unknown column")
	}
}

func TestJSONAddressingExpressions(t *testing.T) {
	if got := TextExpr("metadata", "status"); got != "metadata->>'status'" {
		t.Errorf("Wrong text expression: %s", got)
	}
	if got := RawExpr("metadata", "lead_score"); got != "metadata->'lead_score'" {
		t.Errorf("Wrong raw expression: %s", got)
	}
	if got := TextExpr("call_ended_reason", ""); got != "call_ended_reason" {
		t.Errorf("Plain column must stay unaddressed: %s", got)
	}
	// Single quotes in field names must not break out of the path literal.
	if got := TextExpr("metadata", "o'brien"); got != "metadata->>'o''brien'" {
		t.Errorf("Field name not escaped: %s", got)
	}
}
