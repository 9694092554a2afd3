package common

import (
	"fmt"
	"time"
)

// StalenessResult contains the result of a staleness check.
type StalenessResult struct {
	// IsStale indicates whether the data is older than its maximum age.
	IsStale bool
	// Missing is true when the data was never built.
	Missing bool
	// Age is how old the data is.
	Age time.Duration
	// NextCheckTime is when fresh data turns stale.
	NextCheckTime time.Time
	// Reason provides a human-readable explanation for the staleness decision.
	Reason string
}

// CheckStaleness compares updatedAt against maxAge. Data is fresh while
// now - updatedAt < maxAge. A nil updatedAt is reported as missing and stale.
func CheckStaleness(updatedAt *time.Time, now time.Time, maxAge time.Duration) StalenessResult {
	if updatedAt == nil || updatedAt.IsZero() {
		return StalenessResult{
			IsStale: true,
			Missing: true,
			Reason:  "never updated",
		}
	}

	age := now.Sub(*updatedAt)
	expiresAt := updatedAt.Add(maxAge)

	if age >= maxAge {
		return StalenessResult{
			IsStale:       true,
			Age:           age,
			NextCheckTime: expiresAt,
			Reason: fmt.Sprintf("updated %s ago at %s, older than %s",
				age.Truncate(time.Minute), updatedAt.UTC().Format(time.RFC3339), maxAge),
		}
	}

	return StalenessResult{
		IsStale:       false,
		Age:           age,
		NextCheckTime: expiresAt,
		Reason:        fmt.Sprintf("fresh until %s", expiresAt.UTC().Format(time.RFC3339)),
	}
}
