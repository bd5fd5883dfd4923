package filter

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

// List maintains the ordered, mutable sequence of view operations. Operations
// are never mutated after being added except for their order during removal
// and reordering.
type List struct {
	ops []models.Operation
}

// NewList creates a list seeded with already-normalized operations.
func NewList(ops []models.Operation) *List {
	l := &List{ops: append([]models.Operation(nil), ops...)}
	sort.SliceStable(l.ops, func(i, j int) bool { return l.ops[i].Order < l.ops[j].Order })
	return l
}

// Operations returns a copy of the list sorted ascending by order.
func (l *List) Operations() []models.Operation {
	ops := append([]models.Operation(nil), l.ops...)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Order < ops[j].Order })
	return ops
}

// Len returns the number of operations in the list.
func (l *List) Len() int {
	return len(l.ops)
}

// Add validates and appends an operation, assigning order = max(existing)+1
// (0 when the list is empty) and a fresh id when none is set.
func (l *List) Add(op models.Operation) error {
	if err := Validate(op); err != nil {
		return err
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	op.Order = 0
	for _, existing := range l.ops {
		if existing.Order >= op.Order {
			op.Order = existing.Order + 1
		}
	}
	l.ops = append(l.ops, op)
	return nil
}

// Remove deletes the operation with the given id and reassigns order values
// to a dense 0..N-1 range preserving relative order. Removing an unknown id
// is a no-op.
func (l *List) Remove(id string) {
	kept := l.ops[:0]
	for _, op := range l.ops {
		if op.ID != id {
			kept = append(kept, op)
		}
	}
	l.ops = kept
	sort.SliceStable(l.ops, func(i, j int) bool { return l.ops[i].Order < l.ops[j].Order })
	for i := range l.ops {
		l.ops[i].Order = i
	}
}

// MoveUp swaps the operation's order value with its predecessor in the
// order-sorted sequence. The first operation stays put.
func (l *List) MoveUp(id string) {
	l.move(id, -1)
}

// MoveDown swaps the operation's order value with its successor in the
// order-sorted sequence. The last operation stays put.
func (l *List) MoveDown(id string) {
	l.move(id, 1)
}

func (l *List) move(id string, direction int) {
	sorted := l.Operations()
	pos := -1
	for i, op := range sorted {
		if op.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	other := pos + direction
	if other < 0 || other >= len(sorted) {
		return
	}
	l.setOrder(sorted[pos].ID, sorted[other].Order)
	l.setOrder(sorted[other].ID, sorted[pos].Order)
}

func (l *List) setOrder(id string, order int) {
	for i := range l.ops {
		if l.ops[i].ID == id {
			l.ops[i].Order = order
			return
		}
	}
}

// Clear empties the list.
func (l *List) Clear() {
	l.ops = nil
}

// Validate checks an operation against the validity rules for its type.
func Validate(op models.Operation) error {
	switch op.Type {
	case models.OperationFilter:
		return ValidateFilter(op)
	case models.OperationDistinct:
		return ValidateDistinct(op)
	default:
		return fmt.Errorf("unknown operation type: %q", op.Type)
	}
}

// ValidateFilter checks a filter draft. Callers should gate their add action
// on this so invalid drafts never reach the list.
func ValidateFilter(op models.Operation) error {
	if op.Column == "" {
		return fmt.Errorf("filter column is required")
	}
	if op.Operator == "" {
		return fmt.Errorf("filter operation is required")
	}
	if !OperatorAllowed(op.Column, op.Operator) {
		return fmt.Errorf("operation %q is not valid for column %q", op.Operator, op.Column)
	}
	if op.Value == "" && op.Operator != OpJSONExists {
		return fmt.Errorf("filter value is required for operation %q", op.Operator)
	}
	if IsJSONBColumn(op.Column) && op.JSONField == "" {
		return fmt.Errorf("JSON field is required for column %q", op.Column)
	}
	return nil
}

// ValidateDistinct checks a distinct draft.
func ValidateDistinct(op models.Operation) error {
	if op.Column == "" {
		return fmt.Errorf("distinct column is required")
	}
	if _, ok := ColumnByKey(op.Column); !ok {
		return fmt.Errorf("unknown column: %q", op.Column)
	}
	if IsJSONBColumn(op.Column) && op.JSONField == "" {
		return fmt.Errorf("JSON field is required for column %q", op.Column)
	}
	return nil
}
