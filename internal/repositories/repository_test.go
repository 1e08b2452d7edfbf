package repositories

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockDB creates a mock database closed at the end of the test
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db, mock
}

func TestDuplicateKey(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedKey string
	}{
		{
			name:        "mysql 8 qualified key",
			err:         &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.com' for key 'users.uq_users_email'"},
			expectedKey: "uq_users_email",
		},
		{
			name:        "mysql 5.7 bare key",
			err:         &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'uq_users_username'"},
			expectedKey: "uq_users_username",
		},
		{
			name:        "other mysql error",
			err:         &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
			expectedKey: "",
		},
		{
			name:        "not a mysql error",
			err:         sql.ErrConnDone,
			expectedKey: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, duplicateKey(tt.err))
		})
	}
}

func TestMySQLErrorNumber(t *testing.T) {
	assert.Equal(t, errNoReferencedRow, mysqlErrorNumber(&mysql.MySQLError{Number: 1452}))
	assert.Equal(t, uint16(0), mysqlErrorNumber(sql.ErrNoRows))
}
