// Package database is the SQL access layer behind the agent's database tools.
//
// It exposes Query, Execute and Schema over a single
// database/sql code path with two registered drivers: modernc.org/sqlite for
// SQLite and pgx for PostgreSQL. The driver is selected from the connection
// string scheme, so the same tool functions work against either engine.
//
// Every operation opens and closes its own connection: there is no pooling
// and no transaction scope beyond the single statement being executed. That
// keeps the tools stateless with respect to program state, matching the rest
// of the tool-function contract.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Column describes one column of a table, with the driver-reported type text.
// Types are not normalized across engines.
type Column struct {
	Name string `json:"colonne"`
	Type string `json:"type"`
}

// normalizeDSN maps a connection string onto a registered driver name and the
// DSN that driver expects. SQLAlchemy-style URLs found in existing
// connections.json files are accepted: "sqlite:///foo.db" is the relative
// path foo.db, "sqlite:////var/db/foo.db" is absolute.
func normalizeDSN(connString string) (driver, dsn string, err error) {
	lower := strings.ToLower(connString)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		path := connString[len("sqlite://"):]
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return "", "", fmt.Errorf("empty sqlite path in %q", connString)
		}
		return "sqlite", path, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", connString, nil
	case strings.Contains(connString, "://"):
		return "", "", fmt.Errorf("unsupported connection string scheme in %q", connString)
	default:
		// Bare paths are treated as SQLite database files.
		return "sqlite", connString, nil
	}
}

// open dials the database described by connString.
func open(connString string) (driverName string, db *sql.DB, err error) {
	driverName, dsn, err := normalizeDSN(connString)
	if err != nil {
		return "", nil, err
	}
	db, err = sql.Open(driverName, dsn)
	if err != nil {
		return "", nil, fmt.Errorf("open database: %w", err)
	}
	return driverName, db, nil
}

// Query runs a single statement expected to return rows. It returns the
// result column names in select order and one record per row mapping column
// name to a JSON-friendly scalar. An empty result set is not an error.
//
// The SQL text comes straight from the hosted agent and is executed without
// validation or sanitization. This is a documented trust boundary of the
// system, not an oversight.
func Query(ctx context.Context, connString, sqlQuery string) ([]string, []map[string]any, error) {
	_, db, err := open(connString)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	records := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return columns, records, nil
}

// Execute runs a single statement expected to mutate state and returns the
// number of affected rows. database/sql autocommits, so the change is durable
// before Execute returns. Same trust boundary as Query.
func Execute(ctx context.Context, connString, sqlStmt string) (int64, error) {
	_, db, err := open(connString)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report this; the statement still committed.
		return 0, nil
	}
	return affected, nil
}

// Schema enumerates the tables of the database along with their columns in
// definition order. A database with zero tables yields an empty map, never an
// error.
func Schema(ctx context.Context, connString string) (map[string][]Column, error) {
	driverName, db, err := open(connString)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	switch driverName {
	case "sqlite":
		return sqliteSchema(ctx, db)
	default:
		return postgresSchema(ctx, db)
	}
}

// sqliteSchema reads the table list from sqlite_master and the columns from
// PRAGMA table_info, the same introspection path the sqlite shell uses.
func sqliteSchema(ctx context.Context, db *sql.DB) (map[string][]Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	schema := make(map[string][]Column, len(tables))
	for _, table := range tables {
		cols, err := sqliteColumns(ctx, db, table)
		if err != nil {
			return nil, err
		}
		schema[table] = cols
	}
	return schema, nil
}

func sqliteColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	// SQL identifier quoting doubles embedded quotes; %q would emit Go
	// string escapes instead.
	quoted := strings.ReplaceAll(table, `"`, `""`)
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info("%s")`, quoted))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info %s: %w", table, err)
		}
		cols = append(cols, Column{Name: name, Type: typ})
	}
	return cols, rows.Err()
}

// postgresSchema reads information_schema.columns for the public schema,
// ordered by ordinal position so column order matches the table definition.
func postgresSchema(ctx context.Context, db *sql.DB) (map[string][]Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT table_name, column_name, data_type
		 FROM information_schema.columns
		 WHERE table_schema = 'public'
		 ORDER BY table_name, ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	schema := make(map[string][]Column)
	for rows.Next() {
		var table, name, typ string
		if err := rows.Scan(&table, &name, &typ); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		schema[table] = append(schema[table], Column{Name: name, Type: typ})
	}
	return schema, rows.Err()
}

// normalizeValue converts driver-specific scan results into values that
// marshal cleanly to JSON for the hosted agent.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
