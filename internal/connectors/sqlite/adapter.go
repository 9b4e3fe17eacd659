// Package sqlite provides the sqlite:// adapter over SQLite database files.
//
// sqlite://./app.db lists tables and views; sqlite://./app.db/users returns
// the rows of one table. Databases are opened read-only.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/reveal-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// Scheme is the locator scheme served by this adapter.
const Scheme = "sqlite"

// Ensure Adapter implements the interfaces.
var (
	_ driven.Adapter           = (*Adapter)(nil)
	_ driven.LocatorNormalizer = (*Adapter)(nil)
)

// Adapter reads SQLite schema and table rows.
type Adapter struct {
	maxRows int
}

// New creates a SQLite adapter. maxRows caps rows read from one table;
// zero or less means no cap.
func New(maxRows int) *Adapter {
	return &Adapter{maxRows: maxRows}
}

// Scheme returns "sqlite".
func (a *Adapter) Scheme() string {
	return Scheme
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		Scheme:            Scheme,
		Description:       "SQLite databases: tables, views and their rows",
		Structure:         true,
		Element:           true,
		AvailableElements: true,
		Schema: []domain.FieldSchema{
			{Name: "name", Type: "string", Description: "Table or view name"},
			{Name: "type", Type: "string", Description: "table or view"},
			{Name: "columns", Type: "[]string", Description: "Column names in declaration order"},
			{Name: "rows", Type: "int", Description: "Row count"},
		},
		Examples: []string{
			"sqlite://./app.db",
			"sqlite://./app.db?rows>0&sort=-rows",
			"sqlite://./app.db/users?email~=@example\\.com$&limit=10",
		},
	}
}

// NormalizeLocator splits the database file from the table name.
func (a *Adapter) NormalizeLocator(loc domain.Locator) (domain.Locator, error) {
	return filesystem.Normalize(loc)
}

type table struct {
	name string
	kind string
}

// ResolveStructure lists tables and views with their columns and row counts.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	db, err := open(loc.Resource)
	if err != nil {
		return domain.AdapterResult{}, err
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return domain.AdapterResult{}, err
	}

	items := make([]*domain.Object, 0, len(tables))
	for _, t := range tables {
		columns, err := tableColumns(ctx, db, t.name)
		if err != nil {
			return domain.AdapterResult{}, err
		}

		var count int64
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(t.name)).Scan(&count); err != nil {
			return domain.AdapterResult{}, fmt.Errorf("counting rows in %s: %w", t.name, err)
		}

		cols := make([]any, len(columns))
		for i, c := range columns {
			cols[i] = c
		}
		items = append(items, domain.NewObject().
			Set("name", t.name).
			Set("type", t.kind).
			Set("columns", cols).
			Set("rows", count))
	}
	return domain.SequenceResult(items), nil
}

// ResolveElement returns the rows of one table, in rowid order for tables.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	db, err := open(loc.Resource)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}
	found := false
	for _, t := range tables {
		if t.name == name {
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	query := "SELECT * FROM " + quoteIdent(name)
	if a.maxRows > 0 {
		query += fmt.Sprintf(" LIMIT %d", a.maxRows)
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	defer rows.Close()

	items, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if a.maxRows > 0 && len(items) == a.maxRows {
		logger.Warn("sqlite: %s read stopped at %d rows (sqlite.max_rows)", name, a.maxRows)
	}

	result := domain.SequenceResult(items)
	return &result, nil
}

// ListAvailableElements lists table and view names.
func (a *Adapter) ListAvailableElements(ctx context.Context, loc domain.Locator) ([]domain.ElementInfo, error) {
	db, err := open(loc.Resource)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}

	elements := make([]domain.ElementInfo, 0, len(tables))
	for _, t := range tables {
		elements = append(elements, domain.ElementInfo{
			Name:        t.name,
			Description: t.kind,
			Example:     "sqlite://" + loc.Resource + "/" + t.name,
		})
	}
	return elements, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]table, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, type FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []table
	for rows.Next() {
		var t table
		if err := rows.Scan(&t.name, &t.kind); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func tableColumns(ctx context.Context, db *sql.DB, name string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", name)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", name, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

func scanRows(rows *sql.Rows) ([]*domain.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	items := []*domain.Object{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		obj := domain.NewObject()
		for i, col := range columns {
			obj.Set(col, columnValue(values[i]))
		}
		items = append(items, obj)
	}
	return items, rows.Err()
}

// columnValue maps BLOBs to text, base64 encoding non-UTF-8 bytes.
func columnValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
