// Package profile stores the tariff section of accepted consumer
// registrations together with the day partition derived from it.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinjo-energy/kinjo/core/tariff"
)

var (
	// ErrNotFound is returned when no profile matches the requested ID.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidPRM is returned for meter identifiers that are not 14 digits.
	ErrInvalidPRM = errors.New("PRM must be 14 digits")
)

// PRMLength is the number of digits of a delivery point identifier.
const PRMLength = 14

// Profile is an accepted tariff subscription.
type Profile struct {
	ID           string              `json:"id"`
	PRM          string              `json:"prm"`
	Subscription tariff.Subscription `json:"subscription"`
	// Description is the textual summary of the time ranges.
	Description string          `json:"description"`
	Segments    tariff.Segments `json:"segments"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Query filters List results. Zero values match everything.
type Query struct {
	PRM   string
	Since time.Time
	Limit int
}

func (q Query) matches(p Profile) bool {
	if q.PRM != "" && p.PRM != q.PRM {
		return false
	}
	if !q.Since.IsZero() && p.CreatedAt.Before(q.Since) {
		return false
	}
	return true
}

// Store persists profiles.
type Store interface {
	Save(ctx context.Context, p Profile) error
	Get(ctx context.Context, id string) (Profile, error)
	// List returns matching profiles, newest first.
	List(ctx context.Context, q Query) ([]Profile, error)
	Close() error
}

// ValidatePRM checks the meter identifier format.
func ValidatePRM(prm string) error {
	if len(prm) != PRMLength {
		return fmt.Errorf("%w: got %d characters", ErrInvalidPRM, len(prm))
	}
	for _, r := range prm {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: unexpected %q", ErrInvalidPRM, r)
		}
	}
	return nil
}
