package session

import (
	"fmt"

	"github.com/foxseedlab/kikitorin/internal/protocol"
)

// mergeResults reconciles a server update run into the authoritative
// result list: existing indices are overwritten in place (partial results
// being finalized or re-scored), indices past the end are appended. The
// returned slice is freshly allocated; entries below index are untouched.
//
// An index past the current length would create a gap, which the protocol
// never produces; it is rejected as a violation rather than padded.
func mergeResults(existing []protocol.Result, index int, updates []protocol.Result) ([]protocol.Result, error) {
	if index < 0 || index > len(existing) {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrResultGap, index, len(existing))
	}
	merged := make([]protocol.Result, len(existing), len(existing)+len(updates))
	copy(merged, existing)
	for i, update := range updates {
		at := index + i
		if at < len(merged) {
			merged[at] = update
			continue
		}
		merged = append(merged, update)
	}
	return merged, nil
}
