package calllogs

import (
	"fmt"
	"net/url"
	"strings"
)

// The OR expression grammar is `clause,clause,...` where a clause is either
// `column.operator.value` or a conjunctive sub-clause `and(clause,clause)`.
// Values are percent-encoded; `*` wildcards map to SQL `%`.

var clauseOperators = map[string]string{
	"eq":    "=",
	"neq":   "<>",
	"gt":    ">",
	"lt":    "<",
	"gte":   ">=",
	"lte":   "<=",
	"ilike": "ILIKE",
}

// renderOrExpression renders an OR expression into one parenthesized SQL
// disjunction with positional parameters starting at paramIndex.
func renderOrExpression(expr string, paramIndex int) (string, []interface{}, error) {
	clauses := splitTopLevel(expr)
	if len(clauses) == 0 {
		return "", nil, fmt.Errorf("empty OR expression")
	}

	var parts []string
	var args []interface{}
	for _, clause := range clauses {
		part, clauseArgs, err := renderClause(clause, paramIndex+len(args))
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, part)
		args = append(args, clauseArgs...)
	}

	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// renderClause renders one clause, recursing into and(...) sub-clauses.
func renderClause(clause string, paramIndex int) (string, []interface{}, error) {
	if strings.HasPrefix(clause, "and(") && strings.HasSuffix(clause, ")") {
		inner := clause[len("and(") : len(clause)-1]
		subClauses := splitTopLevel(inner)
		if len(subClauses) == 0 {
			return "", nil, fmt.Errorf("empty and() sub-clause in OR expression")
		}

		var parts []string
		var args []interface{}
		for _, sub := range subClauses {
			part, subArgs, err := renderCondition(sub, paramIndex+len(args))
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, part)
			args = append(args, subArgs...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", args, nil
	}

	return renderCondition(clause, paramIndex)
}

// renderCondition renders a single column.operator.value condition.
func renderCondition(clause string, paramIndex int) (string, []interface{}, error) {
	dot := strings.Index(clause, ".")
	if dot <= 0 {
		return "", nil, fmt.Errorf("malformed OR clause: %q", clause)
	}
	column := clause[:dot]
	rest := clause[dot+1:]

	// is/not.is conditions carry the literal null, not a parameter.
	if rest == "is.null" {
		return column + " IS NULL", nil, nil
	}
	if rest == "not.is.null" {
		return column + " IS NOT NULL", nil, nil
	}

	dot = strings.Index(rest, ".")
	if dot <= 0 {
		return "", nil, fmt.Errorf("malformed OR clause: %q", clause)
	}
	operator := rest[:dot]
	encoded := rest[dot+1:]

	sqlOp, ok := clauseOperators[operator]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator %q in OR clause %q", operator, clause)
	}

	value, err := url.PathUnescape(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("malformed value in OR clause %q: %w", clause, err)
	}
	if operator == "ilike" {
		value = strings.ReplaceAll(value, "*", "%")
	}

	return fmt.Sprintf("%s %s $%d", column, sqlOp, paramIndex), []interface{}{value}, nil
}

// splitTopLevel splits on commas that are not nested inside parentheses.
func splitTopLevel(expr string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	if start < len(expr) {
		parts = append(parts, expr[start:])
	}
	return parts
}
