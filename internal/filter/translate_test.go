package filter

import (
	"reflect"
	"testing"

	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

func filterOp(column, operator, value, jsonField string, order int) models.Operation {
	return models.Operation{
		ID: "op", Type: models.OperationFilter, Order: order,
		Column: column, Operator: operator, Value: value, JSONField: jsonField,
	}
}

func TestDateEqualsExpandsToDayBounds(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("call_started_at", OpEquals, "2025-01-15", "", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := []models.Predicate{
		{Column: "call_started_at", Operator: models.OpGte, Value: "2025-01-15 00:00:00"},
		{Column: "call_started_at", Operator: models.OpLte, Value: "2025-01-15 23:59:59.999"},
	}
	if !reflect.DeepEqual(q.Predicates, want) {
		t.Errorf("Wrong expansion:\nwant %+v\ngot  %+v", want, q.Predicates)
	}
}

func TestDateAfterExpandsToNextDayStart(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("call_started_at", OpGreaterThan, "2025-01-15", "", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := []models.Predicate{
		{Column: "call_started_at", Operator: models.OpGte, Value: "2025-01-16 00:00:00"},
	}
	if !reflect.DeepEqual(q.Predicates, want) {
		t.Errorf("Wrong expansion:\nwant %+v\ngot  %+v", want, q.Predicates)
	}
}

func TestDateAfterCrossesMonthBoundary(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("call_started_at", OpGreaterThan, "2025-01-31", "", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if q.Predicates[0].Value != "2025-02-01 00:00:00" {
		t.Errorf("Expected next day 2025-02-01 00:00:00, got %v", q.Predicates[0].Value)
	}
}

func TestDateBeforeExcludesWholeDay(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("call_started_at", OpLessThan, "2025-01-15", "", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := []models.Predicate{
		{Column: "call_started_at", Operator: models.OpLt, Value: "2025-01-15 00:00:00"},
	}
	if !reflect.DeepEqual(q.Predicates, want) {
		t.Errorf("Wrong expansion:\nwant %+v\ngot  %+v", want, q.Predicates)
	}
}

func TestDateAfterRejectsMalformedValue(t *testing.T) {
	_, err := Translate([]models.Operation{
		filterOp("call_started_at", OpGreaterThan, "not-a-date", "", 0),
	}, models.LogicAnd, nil)
	if err == nil {
		t.Fatal("Expected an error for a malformed date")
	}
}

func TestJSONNumericUsesRawAddressingWithCast(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("metadata", OpJSONGreaterThan, "50", "lead_score", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := models.Predicate{
		Column: "(metadata->'lead_score')::numeric", Operator: models.OpGt, Value: 50.0,
	}
	if !reflect.DeepEqual(q.Predicates[0], want) {
		t.Errorf("Wrong predicate:\nwant %+v\ngot  %+v", want, q.Predicates[0])
	}
}

func TestJSONEqualsUsesTextAddressing(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("metadata", OpJSONEquals, "qualified", "status", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := models.Predicate{
		Column: "metadata->>'status'", Operator: models.OpEq, Value: "qualified",
	}
	if !reflect.DeepEqual(q.Predicates[0], want) {
		t.Errorf("Wrong predicate:\nwant %+v\ngot  %+v", want, q.Predicates[0])
	}
}

func TestJSONNumericRejectsNonNumericValue(t *testing.T) {
	_, err := Translate([]models.Operation{
		filterOp("metadata", OpJSONLessThan, "abc", "lead_score", 0),
	}, models.LogicAnd, nil)
	if err == nil {
		t.Fatal("Expected an error for a non-numeric value")
	}
}

func TestContainsWrapsWildcards(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("customer_number", OpContains, "9198", "", 0),
		filterOp("call_ended_reason", OpStartsWith, "comp", "", 1),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if q.Predicates[0].Value != "%9198%" || q.Predicates[0].Operator != models.OpILike {
		t.Errorf("Wrong contains predicate: %+v", q.Predicates[0])
	}
	if q.Predicates[1].Value != "comp%" {
		t.Errorf("Wrong starts_with predicate: %+v", q.Predicates[1])
	}
}

func TestJSONExistsUnderAndLogic(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("metadata", OpJSONExists, "", "lead_score", 0),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := []models.Predicate{
		{Column: "metadata->>'lead_score'", Operator: models.OpNotIs, Value: nil},
		{Column: "metadata->>'lead_score'", Operator: models.OpNeq, Value: ""},
	}
	if !reflect.DeepEqual(q.Predicates, want) {
		t.Errorf("Wrong existence encoding:\nwant %+v\ngot  %+v", want, q.Predicates)
	}
}

func TestJSONExistsUnderOrLogic(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("metadata", OpJSONExists, "", "lead_score", 0),
	}, models.LogicOr, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := "and(metadata->>'lead_score'.not.is.null,metadata->>'lead_score'.neq.)"
	if q.OrExpression != want {
		t.Errorf("Wrong OR clause:\nwant %s\ngot  %s", want, q.OrExpression)
	}
	if len(q.Predicates) != 0 {
		t.Errorf("OR-grouped filters must not add AND predicates: %+v", q.Predicates)
	}
}

func TestOrGroupEncoding(t *testing.T) {
	subject := Subject("agent_003", "", "")
	q, err := Translate([]models.Operation{
		filterOp("call_ended_reason", OpEquals, "completed", "", 0),
		filterOp("metadata", OpJSONContains, "qual%ified", "status", 1),
	}, models.LogicOr, subject)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	// Two comma-separated clauses; literal % stripped before wildcard wrap.
	want := "call_ended_reason.eq.completed,metadata->>'status'.ilike.*qualified*"
	if q.OrExpression != want {
		t.Errorf("Wrong OR expression:\nwant %s\ngot  %s", want, q.OrExpression)
	}

	if len(q.Predicates) != 1 || q.Predicates[0].Column != "agent_id" {
		t.Errorf("Only the subject predicate should stay AND-combined: %+v", q.Predicates)
	}
}

func TestUnknownOperatorFailsLoudly(t *testing.T) {
	_, err := Translate([]models.Operation{
		filterOp("customer_number", "fuzzy_match", "91", "", 0),
	}, models.LogicAnd, nil)
	if err == nil {
		t.Fatal("Expected an error for an unknown operator")
	}
}

func TestMultipleDistinctOperationsRejected(t *testing.T) {
	_, err := Translate([]models.Operation{
		{ID: "d1", Type: models.OperationDistinct, Order: 0, Column: "metadata", JSONField: "a"},
		{ID: "d2", Type: models.OperationDistinct, Order: 1, Column: "metadata", JSONField: "b"},
	}, models.LogicAnd, nil)
	if err == nil {
		t.Fatal("Expected an error for multiple distinct operations")
	}
}

func TestTranslateRespectsOperationOrder(t *testing.T) {
	q, err := Translate([]models.Operation{
		filterOp("customer_number", OpEquals, "second", "", 5),
		filterOp("call_ended_reason", OpEquals, "first", "", 1),
	}, models.LogicAnd, nil)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if q.Predicates[0].Value != "first" || q.Predicates[1].Value != "second" {
		t.Errorf("Predicates not in order-index sequence: %+v", q.Predicates)
	}
}

func TestEndToEndScenario(t *testing.T) {
	subject := Subject("agent_003", "", "")
	ops := []models.Operation{
		{ID: "f1", Type: models.OperationFilter, Order: 0, Column: "call_ended_reason", Operator: OpEquals, Value: "completed"},
		{ID: "d1", Type: models.OperationDistinct, Order: 1, Column: "metadata", JSONField: "prospect_name", SortOrder: models.SortDesc},
	}

	q, err := Translate(ops, models.LogicAnd, subject)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	wantPreds := []models.Predicate{
		{Column: "agent_id", Operator: models.OpEq, Value: "agent_003"},
		{Column: "call_ended_reason", Operator: models.OpEq, Value: "completed"},
	}
	if !reflect.DeepEqual(q.Predicates, wantPreds) {
		t.Errorf("Wrong predicates:\nwant %+v\ngot  %+v", wantPreds, q.Predicates)
	}

	wantDistinct := &models.DistinctProjection{Column: "metadata", JSONField: "prospect_name", SortOrder: models.SortDesc}
	if !reflect.DeepEqual(q.Distinct, wantDistinct) {
		t.Errorf("Wrong distinct projection:\nwant %+v\ngot  %+v", wantDistinct, q.Distinct)
	}
	if q.OrExpression != "" {
		t.Errorf("AND logic must not produce an OR expression: %q", q.OrExpression)
	}
}

func TestSubjectDateRange(t *testing.T) {
	preds := Subject("agent_007", "2025-03-01", "2025-03-31")

	want := []models.Predicate{
		{Column: "agent_id", Operator: models.OpEq, Value: "agent_007"},
		{Column: "call_started_at", Operator: models.OpGte, Value: "2025-03-01 00:00:00"},
		{Column: "call_started_at", Operator: models.OpLte, Value: "2025-03-31 23:59:59.999"},
	}
	if !reflect.DeepEqual(preds, want) {
		t.Errorf("Wrong subject predicates:\nwant %+v\ngot  %+v", want, preds)
	}
}
