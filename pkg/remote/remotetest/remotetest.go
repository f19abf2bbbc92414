// Package remotetest provides an in-memory remote.Client for tests.
package remotetest

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// Call records one executed query
type Call struct {
	Table   string
	Op      remote.Operation
	Filters []remote.Filter
	Payload interface{}
}

type failure struct {
	table string
	op    remote.Operation
	err   error
}

// Client is an in-memory backend. Rows are stored in their JSON shape.
type Client struct {
	mu       sync.Mutex
	tables   map[string][]remote.Row
	unique   map[string][][]string
	failures []failure
	calls    []Call

	auth *Auth
}

// New creates an empty fake backend
func New() *Client {
	c := &Client{
		tables: make(map[string][]remote.Row),
		unique: make(map[string][][]string),
	}
	c.auth = &Auth{users: make(map[string]account)}
	return c
}

func (c *Client) Auth() remote.Auth { return c.auth }

// FakeAuth exposes the concrete fake auth for test setup
func (c *Client) FakeAuth() *Auth { return c.auth }

func (c *Client) From(table string) *remote.Query {
	return remote.NewQuery(c, table)
}

// Seed appends rows (maps or models) to table without defaults or unique checks
func (c *Client) Seed(table string, rows ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range rows {
		normalized, err := remote.Rows(r)
		if err != nil {
			panic(fmt.Sprintf("remotetest: seed %s: %v", table, err))
		}
		c.tables[table] = append(c.tables[table], normalized...)
	}
}

// Rows returns a copy of every row in table
func (c *Client) Rows(table string) []remote.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]remote.Row, 0, len(c.tables[table]))
	for _, r := range c.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// Unique declares a unique key; inserts colliding on it fail with a conflict
func (c *Client) Unique(table string, columns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique[table] = append(c.unique[table], columns)
}

// FailOn makes every op on table return err until ClearFailures. An empty op matches all.
func (c *Client) FailOn(table string, op remote.Operation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, failure{table: table, op: op, err: err})
}

func (c *Client) ClearFailures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = nil
}

// Calls returns the executed queries in order
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallCount counts executed queries on table with op
func (c *Client) CallCount(table string, op remote.Operation) int {
	n := 0
	for _, call := range c.Calls() {
		if call.Table == table && call.Op == op {
			n++
		}
	}
	return n
}

// Execute implements remote.Executor
func (c *Client) Execute(ctx context.Context, q *remote.Query, op remote.Operation, payload interface{}, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.calls = append(c.calls, Call{Table: q.Table, Op: op, Filters: q.Filters, Payload: payload})
	for _, f := range c.failures {
		if f.table == q.Table && (f.op == "" || f.op == op) {
			c.mu.Unlock()
			return f.err
		}
	}

	rows, err := c.apply(q, op, payload)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if op == remote.OpCount {
		n, ok := dest.(*int64)
		if !ok {
			return fmt.Errorf("count destination must be *int64, got %T", dest)
		}
		*n = int64(len(rows))
		return nil
	}
	if op == remote.OpSelect {
		rows = project(rows, q.Columns)
	}
	return remote.DecodeResult(q, rows, dest)
}

func (c *Client) apply(q *remote.Query, op remote.Operation, payload interface{}) ([]remote.Row, error) {
	switch op {
	case remote.OpSelect, remote.OpCount:
		return c.selectRows(q), nil
	case remote.OpInsert:
		return c.insert(q.Table, payload)
	case remote.OpUpsert:
		return c.upsert(q.Table, q.OnConflict, payload)
	case remote.OpUpdate:
		return c.update(q, payload)
	case remote.OpDelete:
		kept := c.tables[q.Table][:0]
		var removed []remote.Row
		for _, r := range c.tables[q.Table] {
			if matches(r, q.Filters) {
				removed = append(removed, r)
				continue
			}
			kept = append(kept, r)
		}
		c.tables[q.Table] = kept
		return removed, nil
	}
	return nil, &remote.Error{Code: remote.CodeBadQuery, Message: "unsupported operation " + string(op), Status: http.StatusBadRequest}
}

func (c *Client) selectRows(q *remote.Query) []remote.Row {
	var out []remote.Row
	for _, r := range c.tables[q.Table] {
		if matches(r, q.Filters) {
			out = append(out, copyRow(r))
		}
	}

	if len(q.Orders) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Orders {
				cmp := compare(out[i][o.Column], out[j][o.Column])
				if cmp == 0 {
					continue
				}
				if o.Ascending {
					return cmp < 0
				}
				return cmp > 0
			}
			return false
		})
	}

	if q.RowLimit > 0 && len(out) > q.RowLimit {
		out = out[:q.RowLimit]
	}
	return out
}

func (c *Client) insert(table string, payload interface{}) ([]remote.Row, error) {
	rows, err := remote.Rows(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range rows {
		if id, _ := r["id"].(string); id == "" {
			r["id"] = uuid.NewString()
		}
		if _, ok := r["created_at"]; !ok {
			r["created_at"] = now
		}
		if err := c.checkUnique(table, r); err != nil {
			return nil, err
		}
		c.tables[table] = append(c.tables[table], r)
	}

	out := make([]remote.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyRow(r))
	}
	return out, nil
}

func (c *Client) upsert(table string, onConflict []string, payload interface{}) ([]remote.Row, error) {
	rows, err := remote.Rows(payload)
	if err != nil {
		return nil, err
	}

	var out []remote.Row
	for _, r := range rows {
		existing := c.findBy(table, onConflict, r)
		if existing == nil {
			inserted, err := c.insert(table, r)
			if err != nil {
				return nil, err
			}
			out = append(out, inserted...)
			continue
		}
		for k, v := range r {
			if k == "id" {
				continue
			}
			existing[k] = v
		}
		out = append(out, copyRow(existing))
	}
	return out, nil
}

func (c *Client) update(q *remote.Query, payload interface{}) ([]remote.Row, error) {
	values, err := remote.Rows(payload)
	if err != nil {
		return nil, err
	}

	var out []remote.Row
	for _, r := range c.tables[q.Table] {
		if !matches(r, q.Filters) {
			continue
		}
		for k, v := range values[0] {
			r[k] = v
		}
		out = append(out, copyRow(r))
	}
	return out, nil
}

func (c *Client) findBy(table string, columns []string, probe remote.Row) remote.Row {
	for _, r := range c.tables[table] {
		hit := true
		for _, col := range columns {
			if fmt.Sprint(r[col]) != fmt.Sprint(probe[col]) {
				hit = false
				break
			}
		}
		if hit {
			return r
		}
	}
	return nil
}

func (c *Client) checkUnique(table string, r remote.Row) error {
	for _, cols := range c.unique[table] {
		if c.findBy(table, cols, r) != nil {
			return &remote.Error{
				Code:    remote.CodeUniqueViol,
				Message: fmt.Sprintf("duplicate key value violates unique constraint on %s(%s)", table, strings.Join(cols, ",")),
				Status:  http.StatusConflict,
			}
		}
	}
	return nil
}

func matches(r remote.Row, filters []remote.Filter) bool {
	for _, f := range filters {
		if !matchFilter(r, f) {
			return false
		}
	}
	return true
}

func matchFilter(r remote.Row, f remote.Filter) bool {
	v, ok := r[f.Column]
	switch f.Op {
	case remote.FilterEq:
		return ok && fmt.Sprint(v) == fmt.Sprint(f.Value)
	case remote.FilterIn:
		for _, want := range f.Value.([]string) {
			if ok && fmt.Sprint(v) == want {
				return true
			}
		}
		return false
	case remote.FilterContains:
		have, _ := v.([]interface{})
		set := make(map[string]bool, len(have))
		for _, h := range have {
			set[fmt.Sprint(h)] = true
		}
		for _, want := range f.Value.([]string) {
			if !set[want] {
				return false
			}
		}
		return true
	case remote.FilterTextSearch:
		return ok && textMatch(fmt.Sprint(v), fmt.Sprint(f.Value))
	}
	return false
}

// textMatch approximates a tsquery: every term must prefix some word of text
func textMatch(text, query string) bool {
	words := strings.Fields(strings.ToLower(text))
	for _, term := range remote.SearchTerms(query) {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func compare(a, b interface{}) int {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func project(rows []remote.Row, columns string) []remote.Row {
	if columns == "" || columns == "*" {
		return rows
	}
	cols := strings.Split(columns, ",")
	out := make([]remote.Row, 0, len(rows))
	for _, r := range rows {
		p := make(remote.Row, len(cols))
		for _, col := range cols {
			col = strings.TrimSpace(col)
			if v, ok := r[col]; ok {
				p[col] = v
			}
		}
		out = append(out, p)
	}
	return out
}

func copyRow(r remote.Row) remote.Row {
	c := make(remote.Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
