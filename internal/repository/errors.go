// internal/repository/errors.go
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/errs"
)

const pgUniqueViolation = "23505"

// translate maps gorm and postgres failures onto the errs sentinels.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound(resource)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", resource, errs.ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s %s: %w", resource, pgErr.ConstraintName, errs.ErrConflict)
	}
	return err
}

// affected turns a write that matched no row into a not-found error.
func affected(res *gorm.DB, resource string) error {
	if res.Error != nil {
		return translate(res.Error, resource)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound(resource)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern that matches term as a literal substring.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
