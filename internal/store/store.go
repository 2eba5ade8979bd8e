// Package store is the GORM repository for the tournament tables.
//
// Every exported method is one logical operation and runs in at most one transaction, so a
// caller never observes half of a round or half of a table's scores. Methods return the
// sentinel errors below (wrapped with context) instead of driver errors wherever the cause is
// a domain condition; anything else is a store failure.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the player, table or result does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrRosterFull means the roster already holds the maximum number of players.
	ErrRosterFull = errors.New("roster is full")
	// ErrRoundHasScores means the round already has results and cannot be regenerated.
	ErrRoundHasScores = errors.New("round already has scores recorded")
)

// Store wraps the GORM handle opened by database.Open. It is safe for concurrent use; the
// caller decides how writers are serialized.
type Store struct {
	db *gorm.DB
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks and shutdown.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps GORM errors to the package sentinels, keeping the original in the chain.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", what, ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
