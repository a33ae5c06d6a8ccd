package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrConflict       = errors.New("record conflict")
)

const pgUniqueViolation = "23505"

// translate maps driver and gorm errors onto the store sentinels. Anything it
// does not recognise is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// replace deletes every row of model matching column = value and inserts rec,
// in one transaction. Unique indexes on column keep a concurrent loser from
// leaving a second live row behind; it fails with ErrConflict instead.
func replace(db *gorm.DB, model any, column string, value any, rec any) error {
	return translate(db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(column+" = ?", value).Delete(model).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	}))
}
