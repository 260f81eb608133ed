// Package service contains the business logic layer.
//
// This file holds helpers shared by the services: the injectable clock,
// optimistic version checks and transaction plumbing.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/plantcheck/internal/domain"
	"github.com/DukeRupert/plantcheck/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

// Clock returns the current time. Services read "now" only through a Clock
// so the compliance rules can be tested against fixed dates.
type Clock func() time.Time

// SystemClock returns the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// checkVersion returns a conflict when the caller supplied an expected
// version that no longer matches the stored row. Zero skips the check.
func checkVersion(op, entity string, expected, current int32) error {
	if expected != 0 && expected != current {
		return domain.Conflict(op, fmt.Sprintf("%s was modified by another request (version %d, expected %d)", entity, current, expected))
	}
	return nil
}

// staleWrite is returned when a versioned UPDATE matched no rows.
func staleWrite(op, entity string) error {
	return domain.Conflict(op, fmt.Sprintf("%s was modified by another request", entity))
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// inTx runs fn inside a transaction and commits if fn returns nil.
func inTx(ctx context.Context, db *sql.DB, queries *repository.Queries, fn func(q *repository.Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isNoRows reports whether err is sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
