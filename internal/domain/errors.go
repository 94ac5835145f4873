package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but belongs to another couple. The two
// cases are deliberately indistinguishable to callers.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, blank folder name).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when the invite code credential is missing
// or does not resolve to a couple.
// Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrConflict is returned by repo functions when a write violates a
// uniqueness constraint (e.g. the same geocoder result saved twice).
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrRateLimited is returned by the geocoding proxy when a request arrives
// before the minimum interval has elapsed.
// Handlers should map this to HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// ErrUpstream is returned when a dependent service (the geocoder) fails.
// Handlers should map this to HTTP 502.
var ErrUpstream = errors.New("upstream error")
