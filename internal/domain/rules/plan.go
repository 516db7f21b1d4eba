package rules

import (
	"time"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

// IsProActive reports whether a subscription grants pro entitlements at the
// given instant. A pro row without an expiry never lapses; one with a past
// expiry behaves exactly like free. Nothing downstream ever reads the raw
// plan column directly.
func IsProActive(plan enums.Plan, proExpiresAt *time.Time, now time.Time) bool {
	if plan != enums.PlanPro {
		return false
	}
	if proExpiresAt == nil {
		return true
	}
	return proExpiresAt.After(now)
}
