package state

import "github.com/JoongWonSeo/ws-sync/core/schema"

// computeSnapshot serializes the observed state into its wire shape.
// The result is detached from the target (values are deep-copied through
// serialization), so it is safe to keep as the reference for diffing.
func (s *Sync) computeSnapshot() (map[string]any, error) {
	snap := make(map[string]any, len(s.attrs)+1)
	for _, a := range s.attrs {
		v, err := schema.ReadField(s.targetV, a.field)
		if err != nil {
			return nil, err
		}
		snap[a.wire] = v
	}

	if s.taskExposure != "" {
		snap[s.taskExposure] = s.runningTaskNames()
	}

	return snap, nil
}

// runningTaskNames returns the running task names in start order.
// The list is JSON-native ([]any) so snapshots diff cleanly.
func (s *Sync) runningTaskNames() []any {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	names := make([]any, len(s.runningOrder))
	for i, name := range s.runningOrder {
		names[i] = name
	}
	return names
}
