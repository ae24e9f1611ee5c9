package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTransaction runs fn inside a single database transaction. The
// Repository handed to fn is bound to that transaction; all multi-step
// settlement transitions go through here.
func (r *Repository) WithTransaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// forUpdate applies a FOR UPDATE row lock on dialects that support it.
// sqlite (used by tests) serializes writers and rejects the clause.
func (r *Repository) forUpdate(tx *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// IsNotFound reports whether err is a gorm record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Backstop for races that slip past in-transaction duplicate checks.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
