package registry

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is a small builder for the open-data query language. Values always go
// through quote, so callers never assemble clauses by hand.
type Query struct {
	selects []string
	where   []string
	order   []string
	limit   int
}

// NewQuery starts an empty query.
func NewQuery() *Query {
	return &Query{}
}

// Select adds projected columns.
func (q *Query) Select(fields ...string) *Query {
	q.selects = append(q.selects, fields...)
	return q
}

// Eq adds field = 'value'.
func (q *Query) Eq(field, value string) *Query {
	q.where = append(q.where, field+" = "+quote(value))
	return q
}

// NotEq adds field != 'value'.
func (q *Query) NotEq(field, value string) *Query {
	q.where = append(q.where, field+" != "+quote(value))
	return q
}

// EqInt adds field = n for numeric columns.
func (q *Query) EqInt(field string, n int) *Query {
	q.where = append(q.where, field+" = "+strconv.Itoa(n))
	return q
}

// Between adds lo <= field <= hi for numeric columns.
func (q *Query) Between(field string, lo, hi int) *Query {
	q.where = append(q.where, field+" >= "+strconv.Itoa(lo), field+" <= "+strconv.Itoa(hi))
	return q
}

// GreaterOrEq adds field >= 'value'. Used for floating timestamps.
func (q *Query) GreaterOrEq(field, value string) *Query {
	q.where = append(q.where, field+" >= "+quote(value))
	return q
}

// In adds field in ('a', 'b', ...). An empty list matches nothing.
func (q *Query) In(field string, values []string) *Query {
	if len(values) == 0 {
		q.where = append(q.where, "1 = 0")
		return q
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	q.where = append(q.where, field+" in ("+strings.Join(quoted, ", ")+")")
	return q
}

// IsFalse adds field = false for boolean columns.
func (q *Query) IsFalse(field string) *Query {
	q.where = append(q.where, field+" = false")
	return q
}

// OrderDesc orders by field descending.
func (q *Query) OrderDesc(field string) *Query {
	q.order = append(q.order, field+" DESC")
	return q
}

// OrderAsc orders by field ascending.
func (q *Query) OrderAsc(field string) *Query {
	q.order = append(q.order, field+" ASC")
	return q
}

// Limit caps the number of rows returned.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Values renders the query as URL parameters.
func (q *Query) Values() url.Values {
	v := url.Values{}
	if len(q.selects) > 0 {
		v.Set("$select", strings.Join(q.selects, ","))
	}
	if len(q.where) > 0 {
		v.Set("$where", strings.Join(q.where, " AND "))
	}
	if len(q.order) > 0 {
		v.Set("$order", strings.Join(q.order, ","))
	}
	if q.limit > 0 {
		v.Set("$limit", strconv.Itoa(q.limit))
	}
	return v
}

// quote renders a string literal, doubling embedded single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
