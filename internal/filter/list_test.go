package filter

import (
	"testing"

	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

func TestAddAssignsOrder(t *testing.T) {
	l := NewList(nil)

	ops := []models.Operation{
		{Type: models.OperationFilter, Column: "call_ended_reason", Operator: OpEquals, Value: "completed"},
		{Type: models.OperationFilter, Column: "customer_number", Operator: OpContains, Value: "91"},
		{Type: models.OperationDistinct, Column: "metadata", JSONField: "prospect_name"},
	}
	for i, op := range ops {
		if err := l.Add(op); err != nil {
			t.Fatalf("Add(%d) failed: %v", i, err)
		}
	}

	got := l.Operations()
	if len(got) != 3 {
		t.Fatalf("Expected 3 operations, got %d", len(got))
	}
	for i, op := range got {
		if op.Order != i {
			t.Errorf("Operation %d: expected order %d, got %d", i, i, op.Order)
		}
		if op.ID == "" {
			t.Errorf("Operation %d: expected a generated id", i)
		}
	}
}

func TestAddAfterGapUsesMaxPlusOne(t *testing.T) {
	l := NewList([]models.Operation{
		{ID: "a", Type: models.OperationFilter, Order: 0, Column: "customer_number", Operator: OpEquals, Value: "x"},
		{ID: "b", Type: models.OperationFilter, Order: 4, Column: "customer_number", Operator: OpEquals, Value: "y"},
	})

	err := l.Add(models.Operation{Type: models.OperationFilter, Column: "call_ended_reason", Operator: OpEquals, Value: "completed"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := l.Operations()
	if got[len(got)-1].Order != 5 {
		t.Errorf("Expected new operation order 5, got %d", got[len(got)-1].Order)
	}
}

func TestAddRejectsInvalidDrafts(t *testing.T) {
	tests := []struct {
		name string
		op   models.Operation
	}{
		{
			name: "missing column",
			op:   models.Operation{Type: models.OperationFilter, Operator: OpEquals, Value: "x"},
		},
		{
			name: "missing operation",
			op:   models.Operation{Type: models.OperationFilter, Column: "customer_number", Value: "x"},
		},
		{
			name: "missing value",
			op:   models.Operation{Type: models.OperationFilter, Column: "customer_number", Operator: OpEquals},
		},
		{
			name: "jsonb filter without field",
			op:   models.Operation{Type: models.OperationFilter, Column: "metadata", Operator: OpJSONEquals, Value: "x"},
		},
		{
			name: "operator illegal for column type",
			op:   models.Operation{Type: models.OperationFilter, Column: "customer_number", Operator: OpJSONEquals, Value: "x"},
		},
		{
			name: "jsonb distinct without field",
			op:   models.Operation{Type: models.OperationDistinct, Column: "metadata"},
		},
		{
			name: "unknown type",
			op:   models.Operation{Type: "projection", Column: "metadata"},
		},
	}

	for _, tt := range tests {
		l := NewList(nil)
		if err := l.Add(tt.op); err == nil {
			t.Errorf("%s: expected Add to fail", tt.name)
		}
		if l.Len() != 0 {
			t.Errorf("%s: invalid operation was appended", tt.name)
		}
	}
}

func TestJSONExistsNeedsNoValue(t *testing.T) {
	l := NewList(nil)
	op := models.Operation{Type: models.OperationFilter, Column: "metadata", Operator: OpJSONExists, JSONField: "lead_score"}
	if err := l.Add(op); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
}

func TestRemoveReindexesDensely(t *testing.T) {
	l := NewList([]models.Operation{
		{ID: "a", Type: models.OperationFilter, Order: 0, Column: "customer_number", Operator: OpEquals, Value: "1"},
		{ID: "b", Type: models.OperationFilter, Order: 1, Column: "customer_number", Operator: OpEquals, Value: "2"},
		{ID: "c", Type: models.OperationFilter, Order: 2, Column: "customer_number", Operator: OpEquals, Value: "3"},
	})

	l.Remove("b")

	got := l.Operations()
	if len(got) != 2 {
		t.Fatalf("Expected 2 operations, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Relative order changed: got %s, %s", got[0].ID, got[1].ID)
	}
	for i, op := range got {
		if op.Order != i {
			t.Errorf("Expected dense order %d, got %d", i, op.Order)
		}
	}
}

func TestRemoveUnknownIDIsNoop(t *testing.T) {
	l := NewList([]models.Operation{
		{ID: "a", Type: models.OperationFilter, Order: 0, Column: "customer_number", Operator: OpEquals, Value: "1"},
	})

	l.Remove("missing")

	got := l.Operations()
	if len(got) != 1 || got[0].ID != "a" || got[0].Order != 0 {
		t.Errorf("Remove of unknown id changed the list: %+v", got)
	}
}

func TestMoveBoundariesAreNoops(t *testing.T) {
	ops := []models.Operation{
		{ID: "a", Type: models.OperationFilter, Order: 0, Column: "customer_number", Operator: OpEquals, Value: "1"},
		{ID: "b", Type: models.OperationFilter, Order: 1, Column: "customer_number", Operator: OpEquals, Value: "2"},
	}
	l := NewList(ops)

	l.MoveUp("a")
	l.MoveDown("b")

	got := l.Operations()
	if got[0].ID != "a" || got[0].Order != 0 || got[1].ID != "b" || got[1].Order != 1 {
		t.Errorf("Boundary move changed the list: %+v", got)
	}
}

func TestMoveSwapsOrderValues(t *testing.T) {
	l := NewList([]models.Operation{
		{ID: "a", Type: models.OperationFilter, Order: 0, Column: "customer_number", Operator: OpEquals, Value: "1"},
		{ID: "b", Type: models.OperationFilter, Order: 3, Column: "customer_number", Operator: OpEquals, Value: "2"},
		{ID: "c", Type: models.OperationFilter, Order: 7, Column: "customer_number", Operator: OpEquals, Value: "3"},
	})

	l.MoveDown("b")

	// Order values are exchanged, not recomputed.
	got := l.Operations()
	if got[0].ID != "a" || got[1].ID != "c" || got[2].ID != "b" {
		t.Fatalf("Expected sequence a, c, b; got %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[1].Order != 3 || got[2].Order != 7 {
		t.Errorf("Expected swapped orders 3 and 7, got %d and %d", got[1].Order, got[2].Order)
	}
}

func TestClearEmptiesList(t *testing.T) {
	l := NewList([]models.Operation{
		{ID: "a", Type: models.OperationFilter, Order: 0, Column: "customer_number", Operator: OpEquals, Value: "1"},
	})

	l.Clear()

	if l.Len() != 0 {
		t.Errorf("Expected empty list, got %d operations", l.Len())
	}
}
