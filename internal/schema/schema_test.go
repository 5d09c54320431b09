package schema

import (
	"strings"
	"testing"
)

func tableByName(t *testing.T, name string) TableDef {
	t.Helper()
	for _, td := range StarTables() {
		if td.Name == name {
			return td
		}
	}
	t.Fatalf("no table %q", name)
	return TableDef{}
}

// TestStarTablesOrder: the fact table must come last so FK targets exist by
// the time it is created.
func TestStarTablesOrder(t *testing.T) {
	tables := StarTables()
	if len(tables) != 4 {
		t.Fatalf("len = %d; want 4", len(tables))
	}
	want := []string{"d_airlines", "d_airports", "d_time", "f_flights"}
	for i, w := range want {
		if tables[i].Name != w {
			t.Fatalf("tables[%d] = %q; want %q", i, tables[i].Name, w)
		}
	}
	if len(tables[3].ForeignKeys) != 4 {
		t.Fatalf("f_flights FKs = %d; want 4", len(tables[3].ForeignKeys))
	}
}

func TestCreateTableMySQL(t *testing.T) {
	sql, err := BuildCreateTableSQL("mysql", tableByName(t, "f_flights"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE `f_flights`",
		"`flight_id` BIGINT AUTO_INCREMENT",
		"`departure_delay` INT",
		"`cancelled` TINYINT(1)",
		"PRIMARY KEY (`flight_id`)",
		"FOREIGN KEY (`origin_airport_id`) REFERENCES `d_airports` (`airport_id`)",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("mysql DDL missing %q:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "`departure_delay` INT NOT NULL") {
		t.Fatalf("nullable measure rendered NOT NULL:\n%s", sql)
	}
}

// TestCreateTableMySQLDimensionKey: dimension keys keep AUTO_INCREMENT but the
// pipeline inserts explicit values, which MySQL tolerates.
func TestCreateTableMySQLDimensionKey(t *testing.T) {
	sql, err := BuildCreateTableSQL("mysql", tableByName(t, "d_airlines"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(sql, "`airline_id` INT AUTO_INCREMENT NOT NULL") {
		t.Fatalf("mysql dim key:\n%s", sql)
	}
	if !strings.Contains(sql, "`iata_code` VARCHAR(255) NOT NULL UNIQUE") {
		t.Fatalf("natural key not unique:\n%s", sql)
	}
}

// TestCreateTablePostgresKeys: GENERATED BY DEFAULT (not ALWAYS) so explicit
// surrogate keys are accepted.
func TestCreateTablePostgresKeys(t *testing.T) {
	sql, err := BuildCreateTableSQL("postgres", tableByName(t, "d_time"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(sql, `"time_id" INT GENERATED BY DEFAULT AS IDENTITY`) {
		t.Fatalf("postgres dim key:\n%s", sql)
	}
	if strings.Contains(sql, "GENERATED ALWAYS") {
		t.Fatalf("GENERATED ALWAYS would reject explicit keys:\n%s", sql)
	}
	if !strings.Contains(sql, `"is_weekend" BOOLEAN NOT NULL`) {
		t.Fatalf("postgres bool:\n%s", sql)
	}
}

// TestCreateTableMSSQLKeys: dimension keys are plain INT (IDENTITY would need
// SET IDENTITY_INSERT around every load); only the fact PK is IDENTITY.
func TestCreateTableMSSQLKeys(t *testing.T) {
	dim, err := BuildCreateTableSQL("mssql", tableByName(t, "d_airports"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(dim, "[airport_id] INT NOT NULL") || strings.Contains(dim, "[airport_id] INT IDENTITY") {
		t.Fatalf("mssql dim key:\n%s", dim)
	}
	fact, err := BuildCreateTableSQL("mssql", tableByName(t, "f_flights"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(fact, "[flight_id] BIGINT IDENTITY(1,1)") {
		t.Fatalf("mssql fact key:\n%s", fact)
	}
}

func TestCreateTableSQLite(t *testing.T) {
	sql, err := BuildCreateTableSQL("sqlite", tableByName(t, "d_airports"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`"airport_id" INTEGER NOT NULL`, `"latitude" REAL`, `PRIMARY KEY ("airport_id")`} {
		if !strings.Contains(sql, want) {
			t.Fatalf("sqlite DDL missing %q:\n%s", want, sql)
		}
	}
}

func TestDropTableSQL(t *testing.T) {
	cases := []struct {
		dialect string
		want    string
	}{
		{"mysql", "DROP TABLE IF EXISTS `f_flights`"},
		{"postgres", `DROP TABLE IF EXISTS "f_flights"`},
		{"sqlite", `DROP TABLE IF EXISTS "f_flights"`},
		{"mssql", "IF OBJECT_ID(N'f_flights', N'U') IS NOT NULL DROP TABLE [f_flights]"},
	}
	for _, tc := range cases {
		got, err := BuildDropTableSQL(tc.dialect, "f_flights")
		if err != nil {
			t.Fatalf("%s: %v", tc.dialect, err)
		}
		if got != tc.want {
			t.Fatalf("%s drop = %q; want %q", tc.dialect, got, tc.want)
		}
	}
	if _, err := BuildDropTableSQL("oracle", "t"); err == nil {
		t.Fatalf("unknown dialect should error")
	}
}
