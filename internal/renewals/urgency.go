package renewals

import "time"

// UrgencyTier is a coarse 3-level classification of how soon a renewal is due.
type UrgencyTier string

const (
	UrgencyHigh   UrgencyTier = "High"
	UrgencyMedium UrgencyTier = "Medium"
	UrgencyNormal UrgencyTier = "Normal"
)

// mediumWindow is how far ahead of the due date a renewal counts as Medium.
const mediumWindow = 72 * time.Hour

// Classify maps a due timestamp to its urgency tier relative to now.
// Due at or before now is High; within the next three days is Medium.
func Classify(dueAt, now time.Time) UrgencyTier {
	if !dueAt.After(now) {
		return UrgencyHigh
	}
	if !dueAt.After(now.Add(mediumWindow)) {
		return UrgencyMedium
	}
	return UrgencyNormal
}
