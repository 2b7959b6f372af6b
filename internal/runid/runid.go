// Package runid generates unique run identifiers using github.com/google/uuid,
// the pack's common choice for entity IDs (e.g. squat-collective-rat's
// postgres layer keys rows by uuid.UUID). Each run gets one, embedded in
// its report's run_meta.
package runid

import "github.com/google/uuid"

// New returns a fresh run identifier.
func New() string {
	return uuid.NewString()
}
