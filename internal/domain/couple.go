// Package domain contains the core data types for the CoupleMap application.
// It is imported by every other internal package (repo, service, handler,
// client) and holds no I/O.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Couple is the tenant: the unit of data isolation.
// Every Folder and Place belongs to exactly one Couple.
// InviteCode is both the join code and the credential; exactly one is active.
type Couple struct {
	ID         uuid.UUID
	InviteCode string
	CreatedAt  time.Time
}
