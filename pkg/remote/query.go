package remote

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
)

// Operation is the kind of request a Query terminal issues
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpsert Operation = "upsert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpCount  Operation = "count"
)

// FilterOp is a row filter operator
type FilterOp string

const (
	FilterEq         FilterOp = "eq"
	FilterIn         FilterOp = "in"
	FilterContains   FilterOp = "cs"
	FilterTextSearch FilterOp = "fts"
)

// TextSearchType selects how the search term is parsed into a tsquery
type TextSearchType string

const (
	SearchDefault   TextSearchType = ""
	SearchPlain     TextSearchType = "plain"
	SearchPhrase    TextSearchType = "phrase"
	SearchWebsearch TextSearchType = "websearch"
)

// TextSearchOptions configures TextSearch
type TextSearchOptions struct {
	Type   TextSearchType
	Config string // e.g. "english"
}

// Filter is one column predicate
type Filter struct {
	Column string
	Op     FilterOp
	Value  interface{}
	Search TextSearchOptions
}

// OrderBy is one ordering term
type OrderBy struct {
	Column    string
	Ascending bool
}

// Cardinality is the number of rows a select expects
type Cardinality int

const (
	Many Cardinality = iota
	One
)

// Executor runs a query against a concrete backend
type Executor interface {
	Execute(ctx context.Context, q *Query, op Operation, payload interface{}, dest interface{}) error
}

// Query builds a request against one table. Builder methods return a copy.
type Query struct {
	exec Executor

	Table       string
	Columns     string
	Filters     []Filter
	Orders      []OrderBy
	RowLimit    int
	OnConflict  []string
	Cardinality Cardinality
}

// NewQuery creates a query for table executed by exec
func NewQuery(exec Executor, table string) *Query {
	return &Query{exec: exec, Table: table, Columns: "*"}
}

func (q *Query) clone() *Query {
	c := *q
	c.Filters = append([]Filter(nil), q.Filters...)
	c.Orders = append([]OrderBy(nil), q.Orders...)
	c.OnConflict = append([]string(nil), q.OnConflict...)
	return &c
}

// Select restricts returned columns (comma separated)
func (q *Query) Select(columns string) *Query {
	c := q.clone()
	if columns == "" {
		columns = "*"
	}
	c.Columns = columns
	return c
}

// Eq filters rows where column equals value
func (q *Query) Eq(column string, value interface{}) *Query {
	c := q.clone()
	c.Filters = append(c.Filters, Filter{Column: column, Op: FilterEq, Value: value})
	return c
}

// In filters rows where column is one of values
func (q *Query) In(column string, values []string) *Query {
	c := q.clone()
	c.Filters = append(c.Filters, Filter{Column: column, Op: FilterIn, Value: append([]string(nil), values...)})
	return c
}

// Contains filters rows whose array column contains all of values
func (q *Query) Contains(column string, values []string) *Query {
	c := q.clone()
	c.Filters = append(c.Filters, Filter{Column: column, Op: FilterContains, Value: append([]string(nil), values...)})
	return c
}

// TextSearch filters rows whose column matches the full-text query
func (q *Query) TextSearch(column, query string, opts TextSearchOptions) *Query {
	c := q.clone()
	c.Filters = append(c.Filters, Filter{Column: column, Op: FilterTextSearch, Value: query, Search: opts})
	return c
}

// Match adds one equality filter per entry, in column order
func (q *Query) Match(values map[string]interface{}) *Query {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := q.clone()
	for _, k := range keys {
		c.Filters = append(c.Filters, Filter{Column: k, Op: FilterEq, Value: values[k]})
	}
	return c
}

// Order appends an ordering term
func (q *Query) Order(column string, ascending bool) *Query {
	c := q.clone()
	c.Orders = append(c.Orders, OrderBy{Column: column, Ascending: ascending})
	return c
}

// Limit caps the number of returned rows
func (q *Query) Limit(n int) *Query {
	c := q.clone()
	c.RowLimit = n
	return c
}

// Find selects all matching rows into dest (pointer to slice)
func (q *Query) Find(ctx context.Context, dest interface{}) error {
	return q.exec.Execute(ctx, q, OpSelect, nil, dest)
}

// Single selects exactly one row into dest. Zero rows fail with CodeNoRows.
func (q *Query) Single(ctx context.Context, dest interface{}) error {
	c := q.clone()
	c.Cardinality = One
	return c.exec.Execute(ctx, c, OpSelect, nil, dest)
}

// MaybeSingle selects at most one row; found is false when there is none
func (q *Query) MaybeSingle(ctx context.Context, dest interface{}) (bool, error) {
	err := q.Single(ctx, dest)
	if IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert writes rows (a struct, map, or slice of them). dest may be nil.
func (q *Query) Insert(ctx context.Context, rows interface{}, dest interface{}) error {
	c := q.withDestCardinality(dest)
	return c.exec.Execute(ctx, c, OpInsert, rows, dest)
}

// Upsert inserts rows, merging into existing ones that collide on onConflict
func (q *Query) Upsert(ctx context.Context, rows interface{}, onConflict []string, dest interface{}) error {
	if len(onConflict) == 0 {
		return &Error{Code: CodeBadQuery, Message: "upsert requires conflict columns", Status: http.StatusBadRequest}
	}
	c := q.withDestCardinality(dest)
	c.OnConflict = append([]string(nil), onConflict...)
	return c.exec.Execute(ctx, c, OpUpsert, rows, dest)
}

// Update sets values on the filtered rows. An unfiltered update is refused.
func (q *Query) Update(ctx context.Context, values map[string]interface{}, dest interface{}) error {
	if len(q.Filters) == 0 {
		return &Error{Code: CodeBadQuery, Message: fmt.Sprintf("update on %s requires a filter", q.Table), Status: http.StatusBadRequest}
	}
	c := q.withDestCardinality(dest)
	return c.exec.Execute(ctx, c, OpUpdate, values, dest)
}

// Delete removes the filtered rows. An unfiltered delete is refused.
func (q *Query) Delete(ctx context.Context) error {
	if len(q.Filters) == 0 {
		return &Error{Code: CodeBadQuery, Message: fmt.Sprintf("delete on %s requires a filter", q.Table), Status: http.StatusBadRequest}
	}
	return q.exec.Execute(ctx, q, OpDelete, nil, nil)
}

// Count returns the number of matching rows
func (q *Query) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := q.exec.Execute(ctx, q, OpCount, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (q *Query) withDestCardinality(dest interface{}) *Query {
	c := q.clone()
	if dest != nil && !IsSliceDest(dest) {
		c.Cardinality = One
	}
	return c
}

// IsSliceDest reports whether dest points to a slice
func IsSliceDest(dest interface{}) bool {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr {
		return false
	}
	return v.Elem().Kind() == reflect.Slice
}

// SearchTerms extracts the bare words of a tsquery-style search string,
// dropping operators and prefix markers ("ai:* & tools" -> ai, tools)
func SearchTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ' ' || r == '&' || r == '|' || r == '\'' || r == '!' || r == '(' || r == ')'
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSuffix(f, ":*")
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}
