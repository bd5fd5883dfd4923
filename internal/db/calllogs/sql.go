package calllogs

import (
	"context"
	"fmt"
	"strings"

	"github.com/PYPE-AI-MAIN/whispey/internal/db/connection"
	"github.com/PYPE-AI-MAIN/whispey/internal/filter"
	"github.com/PYPE-AI-MAIN/whispey/internal/models"
)

// BuildSQL renders a translated query into a parameterized SELECT against
// the call-log table. Column expressions in predicates come from the
// translator and catalog, not raw user input; only values are parameterized.
func BuildSQL(q *models.Query, role string) (string, []interface{}, error) {
	var sb strings.Builder
	var args []interface{}

	selectList := strings.Join(SelectColumns(role), ", ")

	var projection string
	if q.Distinct != nil {
		projection = filter.TextExpr(q.Distinct.Column, q.Distinct.JSONField)
		sb.WriteString("SELECT DISTINCT ON (" + projection + ") " + selectList)
	} else {
		sb.WriteString("SELECT " + selectList)
	}
	sb.WriteString(" FROM " + Table)

	var conjuncts []string
	for _, p := range q.Predicates {
		clause, arg, hasArg, err := renderPredicate(p, len(args)+1)
		if err != nil {
			return "", nil, err
		}
		conjuncts = append(conjuncts, clause)
		if hasArg {
			args = append(args, arg)
		}
	}

	if q.OrExpression != "" {
		clause, orArgs, err := renderOrExpression(q.OrExpression, len(args)+1)
		if err != nil {
			return "", nil, err
		}
		conjuncts = append(conjuncts, clause)
		args = append(args, orArgs...)
	}

	if len(conjuncts) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conjuncts, " AND "))
	}

	if q.Distinct != nil {
		direction := "ASC"
		if q.Distinct.SortOrder == models.SortDesc {
			direction = "DESC"
		}
		sb.WriteString(" ORDER BY " + projection + " " + direction)
	} else {
		orderBy := q.OrderBy
		if orderBy.Column == "" {
			orderBy = models.OrderBy{Column: "created_at", Ascending: false}
		}
		direction := "DESC"
		if orderBy.Ascending {
			direction = "ASC"
		}
		sb.WriteString(" ORDER BY " + orderBy.Column + " " + direction)
	}

	if q.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", q.Limit))
	}
	if q.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", q.Offset))
	}

	return sb.String(), args, nil
}

// renderPredicate renders one (column, operator, value) predicate. The
// returned bool reports whether an argument was consumed.
func renderPredicate(p models.Predicate, paramIndex int) (string, interface{}, bool, error) {
	switch p.Operator {
	case models.OpEq:
		return fmt.Sprintf("%s = $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpNeq:
		return fmt.Sprintf("%s <> $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpGt:
		return fmt.Sprintf("%s > $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpLt:
		return fmt.Sprintf("%s < $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpGte:
		return fmt.Sprintf("%s >= $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpLte:
		return fmt.Sprintf("%s <= $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpILike:
		return fmt.Sprintf("%s ILIKE $%d", p.Column, paramIndex), p.Value, true, nil
	case models.OpIs:
		if p.Value != nil {
			return "", nil, false, fmt.Errorf("is predicate on %s requires a null value", p.Column)
		}
		return p.Column + " IS NULL", nil, false, nil
	case models.OpNotIs:
		if p.Value != nil {
			return "", nil, false, fmt.Errorf("not.is predicate on %s requires a null value", p.Column)
		}
		return p.Column + " IS NOT NULL", nil, false, nil
	default:
		return "", nil, false, fmt.Errorf("unsupported predicate operator: %q", p.Operator)
	}
}

// Fetch executes a translated query and returns its rows. Backend errors are
// returned as-is; there is no retry at this layer.
func Fetch(ctx context.Context, pool *connection.Pool, q *models.Query, role string) (*models.QueryResult, error) {
	sql, args, err := BuildSQL(q, role)
	if err != nil {
		return nil, err
	}
	return pool.QueryWithColumns(ctx, sql, args...)
}
