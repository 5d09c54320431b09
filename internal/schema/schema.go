// Package schema defines the star-schema table shapes and renders CREATE
// TABLE statements per SQL dialect. The abstract column types are the small
// set the model needs; each dialect maps them onto its native types and
// quoting rules.
package schema

import (
	"fmt"
	"strings"
)

// Abstract column types.
const (
	TypeKey    = "key"    // surrogate key loaded explicitly by the pipeline
	TypeAuto   = "auto"   // store-generated auto-incrementing key
	TypeInt    = "int"    // 32-bit integer
	TypeText   = "text"   // variable-length string
	TypeDate   = "date"   // calendar date
	TypeBool   = "bool"   // boolean flag
	TypeFloat  = "float"  // double precision
	TypeBigInt = "bigint" // 64-bit integer
)

// ColumnDef is a minimal description of a table column.
type ColumnDef struct {
	Name     string
	Type     string // one of the Type* constants
	Nullable bool
	Unique   bool
}

// FKDef declares a foreign key from one column to a referenced table column.
type FKDef struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef describes one table of the target schema.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKey  string
	ForeignKeys []FKDef
}

// StarTables returns the four tables of the flight-delays star schema in
// FK-dependency order: dimensions first, fact last.
func StarTables() []TableDef {
	return []TableDef{
		{
			Name:       "d_airlines",
			PrimaryKey: "airline_id",
			Columns: []ColumnDef{
				{Name: "airline_id", Type: TypeKey},
				{Name: "iata_code", Type: TypeText, Unique: true},
				{Name: "airline", Type: TypeText, Nullable: true},
			},
		},
		{
			Name:       "d_airports",
			PrimaryKey: "airport_id",
			Columns: []ColumnDef{
				{Name: "airport_id", Type: TypeKey},
				{Name: "iata_code", Type: TypeText, Unique: true},
				{Name: "airport", Type: TypeText, Nullable: true},
				{Name: "city", Type: TypeText, Nullable: true},
				{Name: "state", Type: TypeText, Nullable: true},
				{Name: "country", Type: TypeText, Nullable: true},
				{Name: "latitude", Type: TypeFloat, Nullable: true},
				{Name: "longitude", Type: TypeFloat, Nullable: true},
			},
		},
		{
			Name:       "d_time",
			PrimaryKey: "time_id",
			Columns: []ColumnDef{
				{Name: "time_id", Type: TypeKey},
				{Name: "date", Type: TypeDate, Unique: true},
				{Name: "year", Type: TypeInt},
				{Name: "month", Type: TypeInt},
				{Name: "day", Type: TypeInt},
				{Name: "day_of_week", Type: TypeInt},
				{Name: "is_weekend", Type: TypeBool},
			},
		},
		{
			Name:       "f_flights",
			PrimaryKey: "flight_id",
			Columns: []ColumnDef{
				{Name: "flight_id", Type: TypeAuto},
				{Name: "time_id", Type: TypeInt},
				{Name: "airline_id", Type: TypeInt},
				{Name: "origin_airport_id", Type: TypeInt},
				{Name: "destination_airport_id", Type: TypeInt},
				{Name: "departure_delay", Type: TypeInt, Nullable: true},
				{Name: "arrival_delay", Type: TypeInt, Nullable: true},
				{Name: "air_time", Type: TypeInt, Nullable: true},
				{Name: "distance", Type: TypeInt, Nullable: true},
				{Name: "cancelled", Type: TypeBool, Nullable: true},
				{Name: "diverted", Type: TypeBool, Nullable: true},
			},
			ForeignKeys: []FKDef{
				{Column: "time_id", RefTable: "d_time", RefColumn: "time_id"},
				{Column: "airline_id", RefTable: "d_airlines", RefColumn: "airline_id"},
				{Column: "origin_airport_id", RefTable: "d_airports", RefColumn: "airport_id"},
				{Column: "destination_airport_id", RefTable: "d_airports", RefColumn: "airport_id"},
			},
		},
	}
}

// BuildCreateTableSQL emits a CREATE TABLE statement for the given dialect:
// "mysql", "postgres", "sqlite" or "mssql".
func BuildCreateTableSQL(dialect string, t TableDef) (string, error) {
	d, err := dialectFor(dialect)
	if err != nil {
		return "", err
	}
	if t.Name == "" || len(t.Columns) == 0 {
		return "", fmt.Errorf("table name and columns required")
	}

	var defs []string
	for _, c := range t.Columns {
		sqlType, err := d.typeOf(c.Type)
		if err != nil {
			return "", fmt.Errorf("table %s column %s: %w", t.Name, c.Name, err)
		}
		def := d.ident(c.Name) + " " + sqlType
		if !c.Nullable && c.Type != TypeAuto {
			def += " NOT NULL"
		}
		if c.Unique {
			def += " UNIQUE"
		}
		defs = append(defs, def)
	}
	if t.PrimaryKey != "" {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", d.ident(t.PrimaryKey)))
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.ident(fk.Column), d.ident(fk.RefTable), d.ident(fk.RefColumn)))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", d.ident(t.Name), strings.Join(defs, ",\n  ")), nil
}

// BuildDropTableSQL emits a DROP TABLE IF EXISTS for the given dialect.
func BuildDropTableSQL(dialect, table string) (string, error) {
	d, err := dialectFor(dialect)
	if err != nil {
		return "", err
	}
	if dialect == "mssql" {
		// IF EXISTS requires SQL Server 2016+; the guarded form works everywhere.
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", table, d.ident(table)), nil
	}
	return "DROP TABLE IF EXISTS " + d.ident(table), nil
}

// dialect bundles identifier quoting and type mapping for one SQL flavor.
type dialect struct {
	ident  func(string) string
	typeOf func(string) (string, error)
}

func dialectFor(name string) (dialect, error) {
	switch name {
	case "mysql":
		return dialect{ident: backtickIdent, typeOf: mysqlType}, nil
	case "postgres":
		return dialect{ident: doubleQuoteIdent, typeOf: postgresType}, nil
	case "sqlite":
		return dialect{ident: doubleQuoteIdent, typeOf: sqliteType}, nil
	case "mssql":
		return dialect{ident: bracketIdent, typeOf: mssqlType}, nil
	}
	return dialect{}, fmt.Errorf("unknown dialect %q", name)
}

func backtickIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func doubleQuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func bracketIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

func mysqlType(abstract string) (string, error) {
	switch abstract {
	case TypeKey:
		// The pipeline assigns surrogate keys itself; AUTO_INCREMENT stays on
		// so ad hoc inserts after the load keep working.
		return "INT AUTO_INCREMENT", nil
	case TypeAuto:
		return "BIGINT AUTO_INCREMENT", nil
	case TypeInt:
		return "INT", nil
	case TypeBigInt:
		return "BIGINT", nil
	case TypeText:
		return "VARCHAR(255)", nil
	case TypeDate:
		return "DATE", nil
	case TypeBool:
		return "TINYINT(1)", nil
	case TypeFloat:
		return "DOUBLE", nil
	}
	return "", fmt.Errorf("unknown column type %q", abstract)
}

func postgresType(abstract string) (string, error) {
	switch abstract {
	case TypeKey:
		// BY DEFAULT (not ALWAYS) so the pipeline can insert explicit keys.
		return "INT GENERATED BY DEFAULT AS IDENTITY", nil
	case TypeAuto:
		return "BIGINT GENERATED BY DEFAULT AS IDENTITY", nil
	case TypeInt:
		return "INT", nil
	case TypeBigInt:
		return "BIGINT", nil
	case TypeText:
		return "TEXT", nil
	case TypeDate:
		return "DATE", nil
	case TypeBool:
		return "BOOLEAN", nil
	case TypeFloat:
		return "DOUBLE PRECISION", nil
	}
	return "", fmt.Errorf("unknown column type %q", abstract)
}

func sqliteType(abstract string) (string, error) {
	switch abstract {
	case TypeKey, TypeAuto, TypeInt, TypeBigInt:
		return "INTEGER", nil
	case TypeText:
		return "TEXT", nil
	case TypeDate:
		return "DATE", nil
	case TypeBool:
		return "INTEGER", nil // 0/1
	case TypeFloat:
		return "REAL", nil
	}
	return "", fmt.Errorf("unknown column type %q", abstract)
}

func mssqlType(abstract string) (string, error) {
	switch abstract {
	case TypeKey:
		// Plain INT: IDENTITY would reject the pipeline's explicit surrogate
		// keys without SET IDENTITY_INSERT gymnastics.
		return "INT", nil
	case TypeAuto:
		return "BIGINT IDENTITY(1,1)", nil
	case TypeInt:
		return "INT", nil
	case TypeBigInt:
		return "BIGINT", nil
	case TypeText:
		return "NVARCHAR(255)", nil
	case TypeDate:
		return "DATE", nil
	case TypeBool:
		return "BIT", nil
	case TypeFloat:
		return "FLOAT", nil
	}
	return "", fmt.Errorf("unknown column type %q", abstract)
}
