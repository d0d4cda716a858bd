package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/fak/pfam-map-loader/internal/domain"
	"github.com/fak/pfam-map-loader/internal/tabular"
)

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindNullInt
)

type column struct {
	name    string
	sqlType string
	kind    columnKind
}

type tableDef struct {
	name    string
	columns []column
}

var pfamMapsTable = tableDef{
	name: "pfam_maps",
	columns: []column{
		{"map_id", "INTEGER NOT NULL", kindInt},
		{"activity_id", "INTEGER NOT NULL", kindInt},
		{"compd_id", "INTEGER NOT NULL", kindInt},
		{"domain_name", "VARCHAR(150) NOT NULL", kindText},
		{"category_flag", "INTEGER NOT NULL", kindInt},
		{"status_flag", "INTEGER NOT NULL", kindInt},
		{"manual_flag", "INTEGER NOT NULL", kindInt},
		{"comment", "VARCHAR(250) NOT NULL", kindText},
		{"timestamp", "VARCHAR(50) NOT NULL", kindText},
		{"submitter", "VARCHAR(150) NOT NULL", kindText},
		{"domain_id", "INTEGER", kindNullInt},
	},
}

var validDomainsTable = tableDef{
	name: "valid_domains",
	columns: []column{
		{"entry_id", "INTEGER NOT NULL", kindInt},
		{"domain_name", "VARCHAR(150) NOT NULL", kindText},
		{"evidence", "VARCHAR(250) NOT NULL", kindText},
		{"timestamp", "VARCHAR(50) NOT NULL", kindText},
		{"submitter", "VARCHAR(250) NOT NULL", kindText},
		{"domain_id", "INTEGER NOT NULL", kindInt},
	},
}

var heldDomainsTable = tableDef{
	name: "held_domains",
	columns: []column{
		{"entry_id", "INTEGER NOT NULL", kindInt},
		{"domain_name", "VARCHAR(150) NOT NULL", kindText},
		{"comment", "VARCHAR(250) NOT NULL", kindText},
		{"timestamp", "VARCHAR(50) NOT NULL", kindText},
		{"submitter", "VARCHAR(150) NOT NULL", kindText},
		{"proposal", "VARCHAR(450) NOT NULL", kindText},
	},
}

var tableDefs = map[string]tableDef{
	pfamMapsTable.name:     pfamMapsTable,
	validDomainsTable.name: validDomainsTable,
	heldDomainsTable.name:  heldDomainsTable,
}

// Tables lists the names ReplaceTables accepts
func Tables() []string {
	return []string{pfamMapsTable.name, validDomainsTable.name, heldDomainsTable.name}
}

func columnNames(def tableDef) []string {
	out := make([]string, len(def.columns))
	for i, c := range def.columns {
		out[i] = c.name
	}
	return out
}

func (def tableDef) createSQL() string {
	parts := make([]string, len(def.columns))
	for i, c := range def.columns {
		parts[i] = c.name + " " + c.sqlType
	}
	return "CREATE TABLE " + def.name + " (\n\t" + strings.Join(parts, ",\n\t") + "\n)"
}

// convert turns a file field into a driver value for the column
func (c column) convert(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch c.kind {
	case kindInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %q is not an integer", domain.ErrMalformedInput, c.name, raw)
		}
		return v, nil
	case kindNullInt:
		if raw == "" || strings.EqualFold(raw, "none") {
			return nil, nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %q is not an integer", domain.ErrMalformedInput, c.name, raw)
		}
		return v, nil
	}
	return raw, nil
}

// Upload is one curation table to load
type Upload struct {
	Name  string
	Table *tabular.Table
}

// prepare converts every row of t into driver values for the named table.
// The header of t must carry every column of the table; extra file columns
// are ignored.
func prepare(name string, t *tabular.Table) (tableDef, [][]any, error) {
	def, ok := tableDefs[name]
	if !ok {
		return tableDef{}, nil, fmt.Errorf("%w: unknown table %q", domain.ErrConfiguration, name)
	}

	idx := make([]int, len(def.columns))
	for i, c := range def.columns {
		j, err := t.MustIndex(c.name)
		if err != nil {
			return tableDef{}, nil, fmt.Errorf("table %s: %w", name, err)
		}
		idx[i] = j
	}

	values := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		vals := make([]any, len(def.columns))
		for i, c := range def.columns {
			v, err := c.convert(row[idx[i]])
			if err != nil {
				return tableDef{}, nil, fmt.Errorf("table %s row %d: %w", name, r+1, err)
			}
			vals[i] = v
		}
		values[r] = vals
	}
	return def, values, nil
}

// CheckTable reports whether t can be loaded into the named table without
// touching the database
func (s *Store) CheckTable(name string, t *tabular.Table) error {
	_, _, err := prepare(name, t)
	return err
}

// ReplaceTables drops, recreates and fills every table of uploads in one
// transaction. All rows of all tables are converted before anything is
// written. It returns the row count per table.
func (s *Store) ReplaceTables(ctx context.Context, uploads []Upload) (map[string]int, error) {
	type prepared struct {
		def    tableDef
		values [][]any
	}
	batches := make([]prepared, len(uploads))
	for i, u := range uploads {
		def, values, err := prepare(u.Name, u.Table)
		if err != nil {
			return nil, err
		}
		batches[i] = prepared{def: def, values: values}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	counts := make(map[string]int, len(batches))
	for _, b := range batches {
		if err := s.fill(ctx, tx, b.def, b.values); err != nil {
			return nil, err
		}
		counts[b.def.name] = len(b.values)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return counts, nil
}

func (s *Store) fill(ctx context.Context, tx *sql.Tx, def tableDef, values [][]any) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+def.name); err != nil {
		return fmt.Errorf("drop %s: %w", def.name, err)
	}
	if _, err := tx.ExecContext(ctx, def.createSQL()); err != nil {
		return fmt.Errorf("create %s: %w", def.name, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		"INSERT INTO "+def.name+" ("+strings.Join(columnNames(def), ", ")+") VALUES ("+placeholders(len(def.columns))+")"))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", def.name, err)
	}
	defer stmt.Close()

	for r, vals := range values {
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", def.name, r+1, err)
		}
	}
	return nil
}
