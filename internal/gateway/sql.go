// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gateway

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLGateway implements Gateway over a PostgreSQL pool opened with the pgx
// stdlib driver.
type SQLGateway struct {
	db *sql.DB
}

// NewSQLGateway returns a Gateway backed by db.
func NewSQLGateway(db *sql.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

// Select returns the rows of table matching q.
func (g *SQLGateway) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	t, err := LookupTable(table)
	if err != nil {
		return nil, &QueryError{Op: "select", Table: table, Err: err}
	}
	query, args, err := buildSelect(t, q)
	if err != nil {
		return nil, &QueryError{Op: "select", Table: table, Err: err}
	}

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("select", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]any, len(t.Columns))
		ptrs := make([]any, len(t.Columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify("select", table, err)
		}
		row := make(Row, len(t.Columns))
		for i, c := range t.Columns {
			row[c.Name] = normalize(c, vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("select", table, err)
	}
	return out, nil
}

// Insert adds rows in one statement. Every row must carry the same columns.
func (g *SQLGateway) Insert(ctx context.Context, table string, rows ...Row) error {
	return g.write(ctx, "insert", table, "", rows)
}

// Upsert inserts rows, replacing the non-key columns of rows whose
// conflictKey already exists.
func (g *SQLGateway) Upsert(ctx context.Context, table, conflictKey string, rows ...Row) error {
	return g.write(ctx, "upsert", table, conflictKey, rows)
}

func (g *SQLGateway) write(ctx context.Context, op, table, conflictKey string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	t, err := LookupTable(table)
	if err != nil {
		return &QueryError{Op: op, Table: table, Err: err}
	}
	query, args, err := buildInsert(t, conflictKey, rows)
	if err != nil {
		return &QueryError{Op: op, Table: table, Err: err}
	}
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return classify(op, table, err)
	}
	return nil
}

// Update applies patch to the rows matching match. ErrNoRows is returned
// when nothing matched.
func (g *SQLGateway) Update(ctx context.Context, table string, patch Row, match Filter) error {
	t, err := LookupTable(table)
	if err != nil {
		return &QueryError{Op: "update", Table: table, Err: err}
	}
	query, args, err := buildUpdate(t, patch, match)
	if err != nil {
		return &QueryError{Op: "update", Table: table, Err: err}
	}
	return g.exec(ctx, "update", table, query, args)
}

// Delete removes the rows matching match. Pass All to empty the table.
func (g *SQLGateway) Delete(ctx context.Context, table string, match Filter) error {
	t, err := LookupTable(table)
	if err != nil {
		return &QueryError{Op: "delete", Table: table, Err: err}
	}
	query, args, err := buildDelete(t, match)
	if err != nil {
		return &QueryError{Op: "delete", Table: table, Err: err}
	}
	return g.exec(ctx, "delete", table, query, args)
}

func (g *SQLGateway) exec(ctx context.Context, op, table, query string, args []any) error {
	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(op, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, table, err)
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

// buildSelect renders a SELECT for t. JSON columns are cast to text so the
// driver hands back plain strings.
func buildSelect(t Table, q Query) (string, []any, error) {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if c.Kind == KindJSON {
			cols[i] = c.Name + "::text"
		} else {
			cols[i] = c.Name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), t.Name)

	where, args, err := buildWhere(t, q.Filter, nil)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(where)

	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			if _, ok := t.Column(o.Column); !ok {
				return "", nil, fmt.Errorf("unknown order column %q on %s", o.Column, t.Name)
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = o.Column + " " + dir
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args, nil
}

// buildInsert renders a multi-row INSERT, with ON CONFLICT when
// conflictKey is set.
func buildInsert(t Table, conflictKey string, rows []Row) (string, []any, error) {
	if err := checkColumns(t, rows[0]); err != nil {
		return "", nil, err
	}
	cols := sortedKeys(rows[0])
	if len(cols) == 0 {
		return "", nil, errors.New("insert row has no columns")
	}

	var args []any
	tuples := make([]string, len(rows))
	for i, row := range rows {
		if len(row) != len(cols) {
			return "", nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), len(cols))
		}
		ph := make([]string, len(cols))
		for j, name := range cols {
			v, ok := row[name]
			if !ok {
				return "", nil, fmt.Errorf("row %d is missing column %q", i, name)
			}
			c, _ := t.Column(name)
			v, err := encode(c, v)
			if err != nil {
				return "", nil, err
			}
			args = append(args, v)
			ph[j] = fmt.Sprintf("$%d", len(args))
		}
		tuples[i] = "(" + strings.Join(ph, ", ") + ")"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES %s", t.Name, strings.Join(cols, ", "), strings.Join(tuples, ", "))

	if conflictKey != "" {
		if _, ok := t.Column(conflictKey); !ok {
			return "", nil, fmt.Errorf("unknown conflict column %q on %s", conflictKey, t.Name)
		}
		var sets []string
		for _, name := range cols {
			if name != conflictKey {
				sets = append(sets, name+" = EXCLUDED."+name)
			}
		}
		if len(sets) == 0 {
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", conflictKey)
		} else {
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s", conflictKey, strings.Join(sets, ", "))
		}
	}
	return b.String(), args, nil
}

func buildUpdate(t Table, patch Row, match Filter) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, errors.New("empty update patch")
	}
	if err := checkColumns(t, patch); err != nil {
		return "", nil, err
	}
	if len(match) == 0 {
		return "", nil, errors.New("update without filter")
	}

	var args []any
	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	for i, name := range cols {
		c, _ := t.Column(name)
		v, err := encode(c, patch[name])
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
		sets[i] = fmt.Sprintf("%s = $%d", name, len(args))
	}

	where, args, err := buildWhere(t, match, args)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("UPDATE %s SET %s%s", t.Name, strings.Join(sets, ", "), where), args, nil
}

func buildDelete(t Table, match Filter) (string, []any, error) {
	if match.IsAll() {
		return "DELETE FROM " + t.Name, nil, nil
	}
	if len(match) == 0 {
		return "", nil, errors.New("delete without filter, use gateway.All")
	}
	where, args, err := buildWhere(t, match, nil)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + t.Name + where, args, nil
}

// buildWhere appends equality conditions to args, numbering placeholders
// after the ones already there. Slice values become "= ANY".
func buildWhere(t Table, f Filter, args []any) (string, []any, error) {
	if len(f) == 0 || f.IsAll() {
		return "", args, nil
	}
	if err := checkColumns(t, f); err != nil {
		return "", nil, err
	}
	cols := sortedKeys(f)
	conds := make([]string, 0, len(cols))
	for _, name := range cols {
		switch v := f[name].(type) {
		case []string:
			args = append(args, v)
			conds = append(conds, fmt.Sprintf("%s = ANY($%d)", name, len(args)))
		default:
			args = append(args, v)
			conds = append(conds, fmt.Sprintf("%s = $%d", name, len(args)))
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func encode(c Column, v any) (any, error) {
	if c.Kind != KindJSON {
		return v, nil
	}
	raw, err := EncodeJSON(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func normalize(c Column, v any) any {
	if c.Kind == KindJSON {
		switch val := v.(type) {
		case string:
			return json.RawMessage(val)
		case []byte:
			return json.RawMessage(append([]byte(nil), val...))
		}
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == matchAllKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// classify maps a driver error onto the gateway taxonomy. Server-side
// errors are query errors, everything that never reached the server is a
// connection error.
func classify(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &QueryError{Op: op, Table: table, Err: err}
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr),
		errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, sql.ErrConnDone),
		pgconn.SafeToRetry(err):
		return &ConnectionError{Op: op, Err: err}
	}
	return &QueryError{Op: op, Table: table, Err: err}
}
