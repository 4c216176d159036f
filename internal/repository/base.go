// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"mealplanner/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// readDB returns the replica when one is configured and primary otherwise.
// Repositories built on a test handle always read from that handle.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.ReadDB; db != nil && primary == database.DB {
		return db
	}
	return primary
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueConstraintError reports a unique index violation from PostgreSQL
// or SQLite.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if pgErrorCode(err) == pgUniqueViolation || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// isForeignKeyError reports a foreign key violation from PostgreSQL or SQLite.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if pgErrorCode(err) == pgForeignKeyViolation || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
