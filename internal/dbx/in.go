package dbx

import (
	"strconv"
	"strings"
)

// InClause builds a parenthesized placeholder list for an IN (...) filter
// over the given ids, e.g. "($1, $2, $3)", together with the matching args
// slice. database/sql does not expand slice parameters, so batch deletes
// and promotions build their placeholders explicitly.
func InClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	return "(" + strings.Join(placeholders, ", ") + ")", args
}
