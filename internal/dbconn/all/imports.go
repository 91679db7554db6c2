// Package all wires every supported database/sql driver into the binary.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each driver, which register themselves
// with database/sql under the names jobs reference in their source/target
// config:
//
//   - "pgx"       (PostgreSQL, via the pgx v5 stdlib adapter)
//   - "mysql"     (MySQL/MariaDB)
//   - "sqlserver" (Microsoft SQL Server)
//   - "sqlite"    (SQLite, pure-Go driver)
//
// A binary that should support only a subset of backends can define its own
// wiring package importing only the drivers it needs.
package all

import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)
