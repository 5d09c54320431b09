// Package all registers every storage backend via blank imports. Binaries
// import it once to make mysql, postgres, sqlite and mssql available through
// storage.New.
package all

import (
	_ "github.com/byluca/flight-delays-etl/internal/storage/mssql"
	_ "github.com/byluca/flight-delays-etl/internal/storage/mysql"
	_ "github.com/byluca/flight-delays-etl/internal/storage/postgres"
	_ "github.com/byluca/flight-delays-etl/internal/storage/sqlite"
)
