package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers
const (
	errDuplicateEntry  uint16 = 1062
	errNoReferencedRow uint16 = 1452
	errDeadlock        uint16 = 1213
)

// mysqlErrorNumber returns the server error number of err, or 0
func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

// duplicateKey returns the index name of a duplicate entry error, or ""
func duplicateKey(err error) string {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != errDuplicateEntry {
		return ""
	}
	// Message format: Duplicate entry 'x' for key 'users.uq_users_email'
	idx := strings.LastIndex(mysqlErr.Message, "for key '")
	if idx < 0 {
		return ""
	}
	key := strings.TrimSuffix(mysqlErr.Message[idx+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}
