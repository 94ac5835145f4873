// Package repo contains all database access logic for the CoupleMap API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/couplemap/couplemap/internal/domain"
)

// Postgres SQLSTATE codes the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so multi-statement writes still nest correctly inside a test tx.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// CoupleRepo defines the persistence operations for Couples.
type CoupleRepo interface {
	// Create inserts a new couple with the given invite code and returns the
	// persisted record. Returns domain.ErrConflict if the code is already taken.
	Create(ctx context.Context, inviteCode string) (domain.Couple, error)

	// GetByInviteCode looks a couple up by its current invite code.
	// Returns domain.ErrNotFound if no couple holds that code.
	GetByInviteCode(ctx context.Context, inviteCode string) (domain.Couple, error)

	// UpdateInviteCode replaces the couple's invite code in a single statement.
	// Returns domain.ErrConflict if the new code is already taken and
	// domain.ErrNotFound if the couple does not exist.
	UpdateInviteCode(ctx context.Context, id uuid.UUID, inviteCode string) (domain.Couple, error)
}

// pgCoupleRepo is the Postgres implementation of CoupleRepo.
type pgCoupleRepo struct {
	db db
}

// NewCoupleRepo constructs a CoupleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCoupleRepo(db db) CoupleRepo {
	return &pgCoupleRepo{db: db}
}

func (r *pgCoupleRepo) Create(ctx context.Context, inviteCode string) (domain.Couple, error) {
	const q = `
		INSERT INTO couples (invite_code)
		VALUES (@invite_code)
		RETURNING id, invite_code, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"invite_code": inviteCode})
	result, err := scanCouple(row)
	if err != nil {
		return domain.Couple{}, fmt.Errorf("repo.CoupleRepo.Create: %w", translate(err))
	}
	return result, nil
}

func (r *pgCoupleRepo) GetByInviteCode(ctx context.Context, inviteCode string) (domain.Couple, error) {
	const q = `
		SELECT id, invite_code, created_at
		FROM couples
		WHERE invite_code = @invite_code`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"invite_code": inviteCode})
	result, err := scanCouple(row)
	if err != nil {
		return domain.Couple{}, fmt.Errorf("repo.CoupleRepo.GetByInviteCode: %w", err)
	}
	return result, nil
}

func (r *pgCoupleRepo) UpdateInviteCode(ctx context.Context, id uuid.UUID, inviteCode string) (domain.Couple, error) {
	const q = `
		UPDATE couples
		SET invite_code = @invite_code
		WHERE id = @id
		RETURNING id, invite_code, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "invite_code": inviteCode})
	result, err := scanCouple(row)
	if err != nil {
		return domain.Couple{}, fmt.Errorf("repo.CoupleRepo.UpdateInviteCode: %w", translate(err))
	}
	return result, nil
}

// scanCouple maps a single database row into a domain.Couple.
func scanCouple(s scanner) (domain.Couple, error) {
	var (
		c  domain.Couple
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.InviteCode, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Couple{}, domain.ErrNotFound
		}
		return domain.Couple{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}

// translate maps constraint violations onto domain errors and leaves every
// other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.ConstraintName)
	}
	return err
}

// nullTime converts an optional time into a value pgx binds as NULL when nil.
func nullTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
