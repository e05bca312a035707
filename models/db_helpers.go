package models

import (
	"database/sql"
)

// existsChecker runs a query expected to return at most one row and reports
// whether any row matched.
func existsChecker(query string, args ...interface{}) (bool, error) {
	var exists int
	err := db.QueryRow(query, args...).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountRecords returns count from a query
func CountRecords(query string, args ...interface{}) (int64, error) {
	var count int64
	err := db.QueryRow(query, args...).Scan(&count)
	return count, err
}
