// Package gatewaytest provides an in-memory gateway.Gateway for tests. It
// validates tables and columns against the same whitelist as the SQL
// gateway and can be told to fail or stall on demand.
package gatewaytest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"gutoautopecas/internal/gateway"
)

// ErrUnreachable is the cause wrapped in injected connection failures.
var ErrUnreachable = errors.New("remote store unreachable")

// Call records one gateway call.
type Call struct {
	Op    string
	Table string
}

type failure struct {
	op, table string
	remaining int // <0 means forever
	err       error
}

// Memory is a concurrency-safe in-memory Gateway.
type Memory struct {
	mu       sync.Mutex
	tables   map[string][]gateway.Row
	calls    []Call
	failures []*failure
	hold     chan struct{}
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]gateway.Row)}
}

// Seed stores rows directly, bypassing failures and the call log.
func (m *Memory) Seed(table string, rows ...gateway.Row) {
	t, err := gateway.LookupTable(table)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		row, err := complete(t, r)
		if err != nil {
			panic(err)
		}
		m.tables[table] = append(m.tables[table], row)
	}
}

// Rows returns a copy of every row of table in storage order.
func (m *Memory) Rows(table string) []gateway.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]gateway.Row, len(m.tables[table]))
	for i, r := range m.tables[table] {
		out[i] = clone(r)
	}
	return out
}

// Calls returns every recorded call in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Count returns how many calls matched op and table. Empty strings match
// anything.
func (m *Memory) Count(op, table string) int {
	n := 0
	for _, c := range m.Calls() {
		if (op == "" || c.Op == op) && (table == "" || c.Table == table) {
			n++
		}
	}
	return n
}

// Fail makes the next n calls matching op and table return err. Empty
// strings match anything and n < 0 fails forever. A nil err injects a
// connection error.
func (m *Memory) Fail(op, table string, n int, err error) {
	if err == nil {
		err = &gateway.ConnectionError{Op: op, Err: ErrUnreachable}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, &failure{op: op, table: table, remaining: n, err: err})
}

// Heal clears every injected failure.
func (m *Memory) Heal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = nil
}

// Hold stalls every write until the returned release func is called.
func (m *Memory) Hold() (release func()) {
	ch := make(chan struct{})
	m.mu.Lock()
	m.hold = ch
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.hold == ch {
				m.hold = nil
			}
			m.mu.Unlock()
			close(ch)
		})
	}
}

// enter records the call, waits on a hold for writes and returns any
// injected failure. The lock is held on successful return.
func (m *Memory) enter(ctx context.Context, op, table string) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: op, Table: table})
	hold := m.hold
	m.mu.Unlock()

	if hold != nil && op != "select" {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	for _, f := range m.failures {
		if f.remaining == 0 {
			continue
		}
		if (f.op == "" || f.op == op) && (f.table == "" || f.table == table) {
			if f.remaining > 0 {
				f.remaining--
			}
			m.mu.Unlock()
			return f.err
		}
	}
	return nil
}

// Select implements gateway.Gateway.
func (m *Memory) Select(ctx context.Context, table string, q gateway.Query) ([]gateway.Row, error) {
	t, err := gateway.LookupTable(table)
	if err != nil {
		return nil, &gateway.QueryError{Op: "select", Table: table, Err: err}
	}
	if err := m.enter(ctx, "select", table); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()

	if err := checkFilter(t, q.Filter); err != nil {
		return nil, &gateway.QueryError{Op: "select", Table: table, Err: err}
	}
	for _, o := range q.Order {
		if _, ok := t.Column(o.Column); !ok {
			return nil, &gateway.QueryError{Op: "select", Table: table, Err: fmt.Errorf("unknown order column %q", o.Column)}
		}
	}

	var out []gateway.Row
	for _, r := range m.tables[table] {
		if matches(r, q.Filter) {
			out = append(out, clone(r))
		}
	}
	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := compare(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Insert implements gateway.Gateway. A duplicate key fails the whole call.
func (m *Memory) Insert(ctx context.Context, table string, rows ...gateway.Row) error {
	return m.write(ctx, "insert", table, "", rows)
}

// Upsert implements gateway.Gateway.
func (m *Memory) Upsert(ctx context.Context, table, conflictKey string, rows ...gateway.Row) error {
	return m.write(ctx, "upsert", table, conflictKey, rows)
}

func (m *Memory) write(ctx context.Context, op, table, conflictKey string, rows []gateway.Row) error {
	t, err := gateway.LookupTable(table)
	if err != nil {
		return &gateway.QueryError{Op: op, Table: table, Err: err}
	}
	if err := m.enter(ctx, op, table); err != nil {
		return err
	}
	defer m.mu.Unlock()

	key := t.Key
	if conflictKey != "" {
		key = conflictKey
	}

	next := append([]gateway.Row(nil), m.tables[table]...)
	for _, r := range rows {
		if conflictKey != "" {
			if idx := indexOf(next, key, r[key]); idx >= 0 {
				merged := clone(next[idx])
				for col, v := range r {
					if err := setColumn(t, merged, col, v); err != nil {
						return &gateway.QueryError{Op: op, Table: table, Err: err}
					}
				}
				next[idx] = merged
				continue
			}
		} else if indexOf(next, key, r[key]) >= 0 {
			return &gateway.QueryError{Op: op, Table: table, Err: fmt.Errorf("duplicate key %v", r[key])}
		}
		row, err := complete(t, r)
		if err != nil {
			return &gateway.QueryError{Op: op, Table: table, Err: err}
		}
		next = append(next, row)
	}
	m.tables[table] = next
	return nil
}

// Update implements gateway.Gateway.
func (m *Memory) Update(ctx context.Context, table string, patch gateway.Row, match gateway.Filter) error {
	t, err := gateway.LookupTable(table)
	if err != nil {
		return &gateway.QueryError{Op: "update", Table: table, Err: err}
	}
	if err := m.enter(ctx, "update", table); err != nil {
		return err
	}
	defer m.mu.Unlock()

	if len(match) == 0 {
		return &gateway.QueryError{Op: "update", Table: table, Err: errors.New("update without filter")}
	}
	if err := checkFilter(t, match); err != nil {
		return &gateway.QueryError{Op: "update", Table: table, Err: err}
	}

	n := 0
	rows := m.tables[table]
	for i, r := range rows {
		if !matches(r, match) {
			continue
		}
		updated := clone(r)
		for col, v := range patch {
			if err := setColumn(t, updated, col, v); err != nil {
				return &gateway.QueryError{Op: "update", Table: table, Err: err}
			}
		}
		rows[i] = updated
		n++
	}
	if n == 0 {
		return gateway.ErrNoRows
	}
	return nil
}

// Delete implements gateway.Gateway.
func (m *Memory) Delete(ctx context.Context, table string, match gateway.Filter) error {
	t, err := gateway.LookupTable(table)
	if err != nil {
		return &gateway.QueryError{Op: "delete", Table: table, Err: err}
	}
	if err := m.enter(ctx, "delete", table); err != nil {
		return err
	}
	defer m.mu.Unlock()

	if len(match) == 0 {
		return &gateway.QueryError{Op: "delete", Table: table, Err: errors.New("delete without filter")}
	}
	if err := checkFilter(t, match); err != nil {
		return &gateway.QueryError{Op: "delete", Table: table, Err: err}
	}

	var kept []gateway.Row
	for _, r := range m.tables[table] {
		if !matches(r, match) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(m.tables[table]) {
		return gateway.ErrNoRows
	}
	m.tables[table] = kept
	return nil
}

func checkFilter(t gateway.Table, f gateway.Filter) error {
	if f.IsAll() {
		return nil
	}
	for col := range f {
		if _, ok := t.Column(col); !ok {
			return fmt.Errorf("unknown column %q on %s", col, t.Name)
		}
	}
	return nil
}

// complete validates r and fills omitted columns with the defaults the
// migration declares.
func complete(t gateway.Table, r gateway.Row) (gateway.Row, error) {
	row := make(gateway.Row, len(t.Columns))
	for _, c := range t.Columns {
		switch c.Kind {
		case gateway.KindText:
			row[c.Name] = ""
		case gateway.KindBool:
			row[c.Name] = false
		case gateway.KindInt:
			row[c.Name] = int64(0)
		case gateway.KindTime:
			row[c.Name] = time.Now()
		case gateway.KindJSON:
			row[c.Name] = json.RawMessage("{}")
		}
	}
	for col, v := range r {
		if err := setColumn(t, row, col, v); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func setColumn(t gateway.Table, row gateway.Row, col string, v any) error {
	c, ok := t.Column(col)
	if !ok {
		return fmt.Errorf("unknown column %q on %s", col, t.Name)
	}
	switch c.Kind {
	case gateway.KindJSON:
		raw, err := gateway.EncodeJSON(v)
		if err != nil {
			return err
		}
		row[col] = append(json.RawMessage(nil), raw...)
	case gateway.KindInt:
		n, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("column %q wants an integer, got %T", col, v)
		}
		row[col] = n
	default:
		row[col] = v
	}
	return nil
}

func clone(r gateway.Row) gateway.Row {
	c := make(gateway.Row, len(r))
	for k, v := range r {
		if raw, ok := v.(json.RawMessage); ok {
			v = append(json.RawMessage(nil), raw...)
		}
		c[k] = v
	}
	return c
}

func indexOf(rows []gateway.Row, col string, v any) int {
	for i, r := range rows {
		if equal(r[col], v) {
			return i
		}
	}
	return -1
}

func matches(r gateway.Row, f gateway.Filter) bool {
	if f.IsAll() {
		return true
	}
	for col, want := range f {
		if list, ok := want.([]string); ok {
			found := false
			for _, w := range list {
				if equal(r[col], w) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if !equal(r[col], want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	if x, ok := toInt64(a); ok {
		if y, ok := toInt64(b); ok {
			return x == y
		}
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func compare(a, b any) int {
	if x, ok := toInt64(a); ok {
		if y, ok := toInt64(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	switch x := a.(type) {
	case string:
		y, _ := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case time.Time:
		y, _ := b.(time.Time)
		return x.Compare(y)
	case bool:
		y, _ := b.(bool)
		switch {
		case !x && y:
			return -1
		case x && !y:
			return 1
		}
	}
	return 0
}
