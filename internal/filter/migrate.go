package filter

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

// rawOperation covers every persisted shape at once: current operations carry
// a type tag, legacy filter rules carry an operation field and no tag. Order
// is a pointer so a missing order can be told apart from order 0.
type rawOperation struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Order     *int             `json:"order"`
	Column    string           `json:"column"`
	Operator  string           `json:"operation"`
	Value     interface{}      `json:"value"`
	JSONField string           `json:"jsonField"`
	SortOrder models.SortOrder `json:"sortOrder"`
}

// Migrate reconciles persisted view data into the current operation format.
// Records already in the current format pass through unchanged, legacy filter
// rules are tagged as filters, and a legacy distinct config is appended as a
// trailing distinct operation when the list has none. Records that match
// neither shape are skipped so one corrupt entry cannot sink a whole view.
//
// Migrate is idempotent: running it on its own output changes nothing.
func Migrate(records []json.RawMessage, legacy *models.LegacyDistinctConfig) []models.Operation {
	type pending struct {
		op       models.Operation
		hasOrder bool
	}

	var migrated []pending
	for _, record := range records {
		var raw rawOperation
		if err := json.Unmarshal(record, &raw); err != nil {
			continue
		}

		switch raw.Type {
		case string(models.OperationFilter), string(models.OperationDistinct):
			migrated = append(migrated, pending{
				op: models.Operation{
					ID:        raw.ID,
					Type:      models.OperationType(raw.Type),
					Column:    raw.Column,
					Operator:  raw.Operator,
					Value:     valueString(raw.Value),
					JSONField: raw.JSONField,
					SortOrder: raw.SortOrder,
				},
				hasOrder: raw.Order != nil,
			})
			if raw.Order != nil {
				migrated[len(migrated)-1].op.Order = *raw.Order
			}
		case "":
			if raw.Operator == "" {
				continue
			}
			// Legacy filter rule: tag it, default a missing order to 0.
			op := models.Operation{
				ID:        raw.ID,
				Type:      models.OperationFilter,
				Column:    raw.Column,
				Operator:  raw.Operator,
				Value:     valueString(raw.Value),
				JSONField: raw.JSONField,
			}
			if raw.Order != nil {
				op.Order = *raw.Order
			}
			migrated = append(migrated, pending{op: op, hasOrder: true})
		default:
			continue
		}
	}

	hasDistinct := false
	for _, p := range migrated {
		if p.op.Type == models.OperationDistinct {
			hasDistinct = true
			break
		}
	}

	if legacy != nil && legacy.Column != "" && !hasDistinct {
		order := 0
		for _, p := range migrated {
			if p.hasOrder && p.op.Order >= order {
				order = p.op.Order + 1
			}
		}
		sortOrder := legacy.Order
		if sortOrder == "" {
			sortOrder = models.SortAsc
		}
		migrated = append(migrated, pending{
			op: models.Operation{
				Type:      models.OperationDistinct,
				Column:    legacy.Column,
				JSONField: legacy.JSONField,
				SortOrder: sortOrder,
				Order:     order,
			},
			hasOrder: true,
		})
	}

	ops := make([]models.Operation, 0, len(migrated))
	for i, p := range migrated {
		op := p.op
		if !p.hasOrder {
			op.Order = i
		}
		if op.ID == "" {
			op.ID = uuid.NewString()
		}
		ops = append(ops, op)
	}

	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Order < ops[j].Order })
	return ops
}

// valueString normalizes a persisted value to its string form. Old saved
// views stored numeric filter values as JSON numbers.
func valueString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
