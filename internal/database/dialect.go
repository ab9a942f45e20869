package database

import (
	"fmt"
	"strings"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// HoursBetween returns a SQL expression computing the elapsed hours from
// one datetime column to another, rounded to the nearest whole hour. Both
// backends round halves away from zero.
func (db *DB) HoursBetween(from, to string) string {
	if db.driver == DriverMySQL {
		return fmt.Sprintf("CAST(ROUND(TIMESTAMPDIFF(SECOND, %s, %s) / 3600) AS SIGNED)", from, to)
	}
	return fmt.Sprintf("CAST(ROUND((JULIANDAY(%s) - JULIANDAY(%s)) * 24) AS INTEGER)", to, from)
}

// IsMissingTable reports whether err came from querying a table that does
// not exist. The query layer treats that the same as an empty table.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || // sqlite
		strings.Contains(msg, "doesn't exist") // mysql error 1146
}
