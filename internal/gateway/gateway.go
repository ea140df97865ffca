// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gateway is the table-oriented interface to the remote store. It
// knows nothing about sections or the content tree: callers name a table,
// pass rows as column maps and get rows back the same way.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Row is one table row keyed by column name.
type Row map[string]any

// Filter matches rows by column equality. A slice value matches any of its
// elements.
type Filter map[string]any

// matchAllKey marks the All filter. It can never be a real column name.
const matchAllKey = "\x00all"

// All matches every row. Delete refuses an empty filter so a wiped table
// always has to be asked for explicitly.
var All = Filter{matchAllKey: true}

// IsAll reports whether f is the All sentinel.
func (f Filter) IsAll() bool {
	_, ok := f[matchAllKey]
	return ok
}

// Order sorts a select by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query describes a select. Zero values mean no filter, natural order and
// no limit.
type Query struct {
	Filter Filter
	Order  []Order
	Limit  int
}

// Gateway is the remote store. Implementations must be safe for concurrent
// use.
type Gateway interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) error
	Update(ctx context.Context, table string, patch Row, match Filter) error
	Upsert(ctx context.Context, table, conflictKey string, rows ...Row) error
	Delete(ctx context.Context, table string, match Filter) error
}

// ErrNoRows is returned by Update and Delete when the filter matched nothing.
var ErrNoRows = errors.New("gateway: no rows matched")

// ConnectionError means the remote store could not be reached. It is the
// only error class worth retrying.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("gateway %s: connection: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError means the store was reached but rejected the statement.
type QueryError struct {
	Op    string
	Table string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("gateway %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsConnection reports whether err is, or wraps, a ConnectionError.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// String returns a text column, or "" when absent or NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// Bool returns a boolean column, false when absent or NULL.
func (r Row) Bool(col string) bool {
	v, _ := r[col].(bool)
	return v
}

// Int returns an integer column, 0 when absent or NULL.
func (r Row) Int(col string) int {
	switch v := r[col].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Time returns a timestamp column, the zero time when absent or NULL.
func (r Row) Time(col string) time.Time {
	v, _ := r[col].(time.Time)
	return v
}

// JSON returns a JSON column as raw bytes, nil when absent or NULL.
func (r Row) JSON(col string) json.RawMessage {
	switch v := r[col].(type) {
	case json.RawMessage:
		return v
	case []byte:
		return json.RawMessage(v)
	case string:
		return json.RawMessage(v)
	}
	return nil
}
