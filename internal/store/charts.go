package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/darshan-rambhia/whm/internal/model"
)

const timeColumn = "time"

// TableName derives the chart table name for a metric group and scope.
func TableName(group string, scope model.Scope) string {
	return Sanitize(group) + "_" + string(scope)
}

// ColumnNames sanitizes flattened keys into column names, keeping order.
// Collisions get a numeric suffix and "time" is reserved.
func ColumnNames(keys []string) []string {
	seen := make(map[string]bool, len(keys)+1)
	seen[timeColumn] = true
	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		name := Sanitize(k)
		base := name
		for n := 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		cols = append(cols, name)
	}
	return cols
}

// ChartRow is one timestamped sample of a flattened metric group.
type ChartRow struct {
	Group  string
	Scope  model.Scope
	Time   time.Time
	Keys   []string // flattened keys in encounter order
	Values []string // parallel to Keys
}

// RecordResult describes what RecordRow did to a table.
type RecordResult struct {
	Table   string
	Created bool
	Pruned  int64
	Missing []string // registered columns absent from the row, stored as NULL
	Extra   []string // row columns absent from the registered schema, not stored
}

// TableSchema is a chart table's registry entry.
type TableSchema struct {
	Table     string      `json:"table"`
	Group     string      `json:"group"`
	Scope     model.Scope `json:"scope"`
	Columns   []string    `json:"columns"`
	CreatedAt time.Time   `json:"created_at"`
}

// RecordRow appends row to its chart table and deletes rows older than
// cutoff, in one transaction. The table is created on first write with one
// REAL column per key; afterwards its column set never changes and values
// are matched to it by name.
func (s *Store) RecordRow(ctx context.Context, row ChartRow, cutoff time.Time) (RecordResult, error) {
	if len(row.Keys) != len(row.Values) {
		return RecordResult{}, fmt.Errorf("row for %s has %d keys but %d values", row.Group, len(row.Keys), len(row.Values))
	}
	table := TableName(row.Group, row.Scope)
	res := RecordResult{Table: table}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning transaction for %s: %w", table, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	cols := ColumnNames(row.Keys)
	owner, registered, found, err := registeredSchema(ctx, tx, table)
	if err != nil {
		return res, err
	}
	if found && owner != row.Group {
		return res, fmt.Errorf("%s for group %q belongs to %q: %w", table, row.Group, owner, ErrGroupConflict)
	}
	if !found {
		registered, res.Created, err = s.ensureTable(ctx, tx, table, row, cols)
		if err != nil {
			return res, err
		}
	}

	values := make(map[string]string, len(cols))
	for i, c := range cols {
		values[c] = row.Values[i]
		if !slices.Contains(registered, c) {
			res.Extra = append(res.Extra, c)
		}
	}

	args := make([]any, 0, len(registered)+1)
	args = append(args, row.Time.Unix())
	quoted := make([]string, 0, len(registered)+1)
	quoted = append(quoted, quoteIdent(timeColumn))
	for _, c := range registered {
		quoted = append(quoted, quoteIdent(c))
		v, ok := values[c]
		if !ok {
			res.Missing = append(res.Missing, c)
		}
		args = append(args, numeric(v))
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), placeholders(len(args)))
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return res, fmt.Errorf("inserting into %s: %w", table, err)
	}

	pruned, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s < ?", quoteIdent(table), quoteIdent(timeColumn)),
		cutoff.Unix())
	if err != nil {
		return res, fmt.Errorf("pruning %s: %w", table, err)
	}
	res.Pruned, _ = pruned.RowsAffected()

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing %s: %w", table, err)
	}
	return res, nil
}

// ensureTable creates and registers table, or registers an existing table
// that predates the registry using its current columns.
func (s *Store) ensureTable(ctx context.Context, tx *sql.Tx, table string, row ChartRow, cols []string) ([]string, bool, error) {
	exists, err := tableExists(ctx, tx, table)
	if err != nil {
		return nil, false, err
	}
	created := false
	if exists {
		all, err := tableInfo(ctx, tx, table)
		if err != nil {
			return nil, false, err
		}
		cols = slices.DeleteFunc(all, func(c string) bool { return c == timeColumn })
		s.logger.Info("registering existing chart table", "table", table, "columns", len(cols))
	} else {
		defs := make([]string, 0, len(cols)+1)
		defs = append(defs, quoteIdent(timeColumn)+" INTEGER NOT NULL")
		for _, c := range cols {
			defs = append(defs, quoteIdent(c)+" REAL")
		}
		create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return nil, false, fmt.Errorf("creating %s: %w", table, err)
		}
		index := fmt.Sprintf("CREATE INDEX %s ON %s(%s)",
			quoteIdent("idx_"+table+"_time"), quoteIdent(table), quoteIdent(timeColumn))
		if _, err := tx.ExecContext(ctx, index); err != nil {
			return nil, false, fmt.Errorf("indexing %s: %w", table, err)
		}
		created = true
		s.logger.Info("created chart table", "table", table, "columns", len(cols))
	}

	colsJSON, err := json.Marshal(cols)
	if err != nil {
		return nil, false, fmt.Errorf("encoding columns of %s: %w", table, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO chart_schemas (table_name, group_name, scope, columns, created_at) VALUES (?, ?, ?, ?, ?)`,
		table, row.Group, string(row.Scope), string(colsJSON), row.Time.Unix())
	if err != nil {
		return nil, false, fmt.Errorf("registering %s: %w", table, err)
	}
	return cols, created, nil
}

// registeredSchema returns the owning group and column order of a
// registered table.
func registeredSchema(ctx context.Context, q querier, table string) (string, []string, bool, error) {
	var group, raw string
	err := q.QueryRowContext(ctx,
		`SELECT group_name, columns FROM chart_schemas WHERE table_name = ?`, table,
	).Scan(&group, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("reading schema of %s: %w", table, err)
	}
	var cols []string
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		return "", nil, false, fmt.Errorf("decoding schema of %s: %w", table, err)
	}
	return group, cols, true, nil
}

// numeric converts a metric value to a REAL, or NULL when it does not parse.
func numeric(v string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return f
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ChartTables lists every chart table in the database, sorted by name.
func (s *Store) ChartTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != ?
		ORDER BY name`, registryTable)
	if err != nil {
		return nil, fmt.Errorf("listing chart tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableColumns returns the metric columns of a chart table in table order,
// excluding time. The registry and any table without a time column are not
// chart tables.
func (s *Store) TableColumns(ctx context.Context, table string) ([]string, error) {
	if table == registryTable {
		return nil, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	all, err := tableInfo(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(all, timeColumn) {
		return nil, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	return slices.DeleteFunc(all, func(c string) bool { return c == timeColumn }), nil
}

// Schema returns the registry entry for a chart table.
func (s *Store) Schema(ctx context.Context, table string) (TableSchema, error) {
	var (
		ts      TableSchema
		scope   string
		raw     string
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT table_name, group_name, scope, columns, created_at
		FROM chart_schemas WHERE table_name = ?`, table,
	).Scan(&ts.Table, &ts.Group, &scope, &raw, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return ts, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	if err != nil {
		return ts, fmt.Errorf("reading schema of %s: %w", table, err)
	}
	if err := json.Unmarshal([]byte(raw), &ts.Columns); err != nil {
		return ts, fmt.Errorf("decoding schema of %s: %w", table, err)
	}
	ts.Scope = model.Scope(scope)
	ts.CreatedAt = time.Unix(created, 0).UTC()
	return ts, nil
}

// Schemas returns every registry entry, sorted by table name.
func (s *Store) Schemas(ctx context.Context) ([]TableSchema, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, group_name, scope, columns, created_at
		FROM chart_schemas ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}
	defer rows.Close()

	var out []TableSchema
	for rows.Next() {
		var (
			ts      TableSchema
			scope   string
			raw     string
			created int64
		)
		if err := rows.Scan(&ts.Table, &ts.Group, &scope, &raw, &created); err != nil {
			return nil, fmt.Errorf("scanning schema: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &ts.Columns); err != nil {
			return nil, fmt.Errorf("decoding schema of %s: %w", ts.Table, err)
		}
		ts.Scope = model.Scope(scope)
		ts.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, ts)
	}
	return out, rows.Err()
}

// PruneBefore deletes rows of table older than cutoff and returns how many
// were removed. A row exactly at cutoff is kept.
func (s *Store) PruneBefore(ctx context.Context, table string, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s < ?", quoteIdent(table), quoteIdent(timeColumn)),
		cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// QueryRows returns the rows of a chart table at or after since, oldest first.
// A zero since returns every row.
func (s *Store) QueryRows(ctx context.Context, table string, since time.Time) (model.ChartSeries, error) {
	series := model.ChartSeries{Table: table, Points: []model.ChartPoint{}}
	cols, err := s.TableColumns(ctx, table)
	if err != nil {
		return series, err
	}
	series.Columns = cols

	quoted := make([]string, 0, len(cols)+1)
	quoted = append(quoted, quoteIdent(timeColumn))
	for _, c := range cols {
		quoted = append(quoted, quoteIdent(c))
	}
	var sinceUnix int64
	if !since.IsZero() {
		sinceUnix = since.Unix()
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s >= ? ORDER BY %s ASC",
		strings.Join(quoted, ", "), quoteIdent(table), quoteIdent(timeColumn), quoteIdent(timeColumn))

	rows, err := s.db.QueryContext(ctx, query, sinceUnix)
	if err != nil {
		return series, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.ChartPoint
		vals := make([]sql.NullFloat64, len(cols))
		dest := make([]any, 0, len(cols)+1)
		dest = append(dest, &p.Time)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return series, fmt.Errorf("scanning row of %s: %w", table, err)
		}
		p.Values = make([]*float64, len(cols))
		for i, v := range vals {
			if v.Valid {
				f := v.Float64
				p.Values[i] = &f
			}
		}
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}
