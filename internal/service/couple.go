// Package service contains the business logic for the CoupleMap API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/invite"
	"github.com/couplemap/couplemap/internal/metrics"
	"github.com/couplemap/couplemap/internal/repo"
)

// maxCodeAttempts bounds how many fresh invite codes Create and Rotate try
// before giving up on collisions.
const maxCodeAttempts = 8

// CoupleService is the identity and access gate: it mints tenants, resolves
// invite codes to tenants and rotates codes.
type CoupleService struct {
	couples repo.CoupleRepo
	codes   invite.CodeGenerator
	logger  *slog.Logger
}

// NewCoupleService constructs a CoupleService. A nil logger falls back to
// slog.Default().
func NewCoupleService(couples repo.CoupleRepo, codes invite.CodeGenerator, logger *slog.Logger) *CoupleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CoupleService{couples: couples, codes: codes, logger: logger}
}

// Create mints a new couple with a fresh invite code.
// A collision on the invite code retries the whole creation with a new code.
func (s *CoupleService) Create(ctx context.Context) (domain.Couple, error) {
	var couple domain.Couple
	err := s.withFreshCode(ctx, "create", func(code string) error {
		c, err := s.couples.Create(ctx, code)
		if err != nil {
			return err
		}
		couple = c
		return nil
	})
	if err != nil {
		return domain.Couple{}, fmt.Errorf("service.CoupleService.Create: %w", err)
	}
	return couple, nil
}

// Join looks up the couple holding inviteCode.
// Returns domain.ErrValidation for a blank code and domain.ErrNotFound when
// no couple holds it.
func (s *CoupleService) Join(ctx context.Context, inviteCode string) (uuid.UUID, error) {
	code := invite.Normalize(inviteCode)
	if code == "" {
		return uuid.Nil, fmt.Errorf("%w: inviteCode is required", domain.ErrValidation)
	}
	c, err := s.couples.GetByInviteCode(ctx, code)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.CoupleService.Join: %w", err)
	}
	return c.ID, nil
}

// Resolve maps a credential onto a tenant id. It fails closed: a blank,
// malformed or unknown code yields domain.ErrUnauthenticated.
func (s *CoupleService) Resolve(ctx context.Context, inviteCode string) (uuid.UUID, error) {
	code := invite.Normalize(inviteCode)
	if !invite.Valid(code) {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	c, err := s.couples.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, domain.ErrUnauthenticated
		}
		return uuid.Nil, fmt.Errorf("service.CoupleService.Resolve: %w", err)
	}
	return c.ID, nil
}

// Rotate replaces the couple's invite code and returns the new one.
// The previous code stops resolving as soon as this returns.
func (s *CoupleService) Rotate(ctx context.Context, coupleID uuid.UUID) (string, error) {
	var newCode string
	err := s.withFreshCode(ctx, "rotate", func(code string) error {
		c, err := s.couples.UpdateInviteCode(ctx, coupleID, code)
		if err != nil {
			return err
		}
		newCode = c.InviteCode
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("service.CoupleService.Rotate: %w", err)
	}
	return newCode, nil
}

// withFreshCode calls write with newly generated codes until it succeeds, fails
// with something other than domain.ErrConflict, or runs out of attempts.
func (s *CoupleService) withFreshCode(ctx context.Context, op string, write func(code string) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return err
		}
		err = write(code)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		lastErr = err
		metrics.InviteCodeCollisions.Inc()
		s.logger.WarnContext(ctx, "invite code collision", "op", op, "attempt", attempt)
	}
	return fmt.Errorf("no unique invite code after %d attempts: %v", maxCodeAttempts, lastErr)
}
