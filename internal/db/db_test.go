package db

import (
	"errors"
	"testing"

	"breadit/internal/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(Options{Driver: "sqlite", DSN: MemoryDSN("db"), Quiet: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })
	return conn
}

func TestOpenRejectsBadOptions(t *testing.T) {
	_, err := Open(Options{Driver: "sqlite"}, nil)
	assert.Error(t, err)
	_, err = Open(Options{Driver: "mysql", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "file:a?_pragma=foreign_keys(1)", withForeignKeys("file:a"))
	assert.Equal(t, "file:a?mode=memory&_pragma=foreign_keys(1)", withForeignKeys("file:a?mode=memory"))
	assert.Equal(t, "file:a?_pragma=foreign_keys(0)", withForeignKeys("file:a?_pragma=foreign_keys(0)"))
}

func TestSQLiteConstraintClassification(t *testing.T) {
	conn := openMemory(t)
	user := models.User{Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(&user).Error)

	dup := models.User{Email: "a@example.com", PasswordHash: "x"}
	err := conn.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), err.Error())
	assert.False(t, IsForeignKeyViolation(err))

	orphan := models.Subscription{UserID: user.ID, SubbreaditID: models.NewID()}
	err = conn.Omit(clause.Associations).Create(&orphan).Error
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err), err.Error())
}

func TestPostgresErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsUnavailable(deadlock))
	assert.False(t, IsUnavailable(unique))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
