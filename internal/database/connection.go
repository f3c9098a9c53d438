package database

import "database/sql"

// Querier is the statement-execution surface shared by *sql.DB and
// *sql.Tx, so manager queries run identically inside and outside a
// transaction scope.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
