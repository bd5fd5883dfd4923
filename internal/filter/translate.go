package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

const dateLayout = "2006-01-02"

// Translate converts an ordered operation list into a backend query. Subject
// predicates are always AND-combined; under OR logic every filter operation
// becomes a clause of a single OR-expression string instead of a discrete
// predicate. Distinct operations surface as projection metadata, never as
// predicates.
func Translate(ops []models.Operation, logic models.GroupLogic, subject []models.Predicate) (*models.Query, error) {
	q := &models.Query{
		Predicates: append([]models.Predicate(nil), subject...),
	}

	sorted := append([]models.Operation(nil), ops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	var orClauses []string
	for _, op := range sorted {
		switch op.Type {
		case models.OperationDistinct:
			if q.Distinct != nil {
				return nil, fmt.Errorf("multiple distinct operations in one list")
			}
			sortOrder := op.SortOrder
			if sortOrder == "" {
				sortOrder = models.SortAsc
			}
			q.Distinct = &models.DistinctProjection{
				Column:    op.Column,
				JSONField: op.JSONField,
				SortOrder: sortOrder,
			}
		case models.OperationFilter:
			preds, err := translateFilter(op)
			if err != nil {
				return nil, err
			}
			if logic == models.LogicOr {
				clause, err := orClause(preds)
				if err != nil {
					return nil, err
				}
				orClauses = append(orClauses, clause)
			} else {
				q.Predicates = append(q.Predicates, preds...)
			}
		default:
			return nil, fmt.Errorf("unknown operation type: %q", op.Type)
		}
	}

	q.OrExpression = strings.Join(orClauses, ",")
	return q, nil
}

// translateFilter converts one filter operation into its backend predicates.
// String comparisons address JSONB fields with text extraction, numeric
// comparisons with raw access cast to numeric. Date filters expand a bare
// date into day bounds.
func translateFilter(op models.Operation) ([]models.Predicate, error) {
	isDate := TypeOf(op.Column) == TypeDate

	switch op.Operator {
	case OpEquals:
		if isDate {
			return []models.Predicate{
				{Column: op.Column, Operator: models.OpGte, Value: op.Value + " 00:00:00"},
				{Column: op.Column, Operator: models.OpLte, Value: op.Value + " 23:59:59.999"},
			}, nil
		}
		return []models.Predicate{
			{Column: TextExpr(op.Column, op.JSONField), Operator: models.OpEq, Value: op.Value},
		}, nil

	case OpJSONEquals:
		return []models.Predicate{
			{Column: TextExpr(op.Column, op.JSONField), Operator: models.OpEq, Value: op.Value},
		}, nil

	case OpContains, OpJSONContains:
		return []models.Predicate{
			{Column: TextExpr(op.Column, op.JSONField), Operator: models.OpILike, Value: "%" + op.Value + "%"},
		}, nil

	case OpStartsWith:
		return []models.Predicate{
			{Column: TextExpr(op.Column, op.JSONField), Operator: models.OpILike, Value: op.Value + "%"},
		}, nil

	case OpGreaterThan:
		if isDate {
			day, err := time.Parse(dateLayout, op.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid date value %q: %w", op.Value, err)
			}
			next := day.AddDate(0, 0, 1).Format(dateLayout)
			// "after Jan 5" excludes Jan 5 itself.
			return []models.Predicate{
				{Column: op.Column, Operator: models.OpGte, Value: next + " 00:00:00"},
			}, nil
		}
		return []models.Predicate{
			{Column: RawExpr(op.Column, op.JSONField), Operator: models.OpGt, Value: op.Value},
		}, nil

	case OpLessThan:
		if isDate {
			return []models.Predicate{
				{Column: op.Column, Operator: models.OpLt, Value: op.Value + " 00:00:00"},
			}, nil
		}
		return []models.Predicate{
			{Column: RawExpr(op.Column, op.JSONField), Operator: models.OpLt, Value: op.Value},
		}, nil

	case OpJSONGreaterThan, OpJSONLessThan:
		number, err := strconv.ParseFloat(op.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric value %q for %s: %w", op.Value, op.Operator, err)
		}
		operator := models.OpGt
		if op.Operator == OpJSONLessThan {
			operator = models.OpLt
		}
		column := "(" + RawExpr(op.Column, op.JSONField) + ")::numeric"
		return []models.Predicate{
			{Column: column, Operator: operator, Value: number},
		}, nil

	case OpJSONExists:
		// Text extraction on purpose: the not-empty check compares against
		// an empty string, which a raw JSONB value cannot do.
		column := TextExpr(op.Column, op.JSONField)
		return []models.Predicate{
			{Column: column, Operator: models.OpNotIs, Value: nil},
			{Column: column, Operator: models.OpNeq, Value: ""},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported filter operation: %q", op.Operator)
	}
}

// orClause encodes one operation's predicates as a clause of the OR
// expression. Multi-predicate operations (date equality, existence) become a
// conjunctive and(...) sub-clause.
func orClause(preds []models.Predicate) (string, error) {
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		part, err := encodePredicate(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "and(" + strings.Join(parts, ",") + ")", nil
}

func encodePredicate(p models.Predicate) (string, error) {
	switch p.Operator {
	case models.OpEq, models.OpGt, models.OpLt, models.OpGte, models.OpLte, models.OpNeq:
		return p.Column + "." + p.Operator + "." + encodeValue(p.Value), nil
	case models.OpILike:
		// Literal % is stripped before re-wrapping in * wildcards, matching
		// how values were encoded in previously saved OR groups.
		value := strings.ReplaceAll(valueText(p.Value), "%", "")
		return p.Column + ".ilike.*" + url.PathEscape(value) + "*", nil
	case models.OpNotIs:
		return p.Column + ".not.is.null", nil
	case models.OpIs:
		return p.Column + ".is.null", nil
	default:
		return "", fmt.Errorf("operator %q cannot be encoded in an OR expression", p.Operator)
	}
}

func encodeValue(v interface{}) string {
	return url.PathEscape(valueText(v))
}

func valueText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Subject builds the mandatory predicates binding a query to one agent and an
// optional inclusive date range. These are AND-combined regardless of the
// group logic chosen for the user's filters.
func Subject(agentID, dateFrom, dateTo string) []models.Predicate {
	preds := []models.Predicate{
		{Column: "agent_id", Operator: models.OpEq, Value: agentID},
	}
	if dateFrom != "" {
		preds = append(preds, models.Predicate{
			Column: "call_started_at", Operator: models.OpGte, Value: dateFrom + " 00:00:00",
		})
	}
	if dateTo != "" {
		preds = append(preds, models.Predicate{
			Column: "call_started_at", Operator: models.OpLte, Value: dateTo + " 23:59:59.999",
		})
	}
	return preds
}
