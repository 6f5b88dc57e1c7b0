package history

import "sync"

// Threshold fires a callback when a rendered list reaches the index returned
// by State.NextOffsetToNotify. It fires at most once per distinct target, so
// scrolling back and forth over the same region does not queue duplicate
// page loads.
type Threshold struct {
	mu       sync.Mutex
	onReach  func()
	fired    bool
	lastSeen int
}

// NewThreshold returns a Threshold that calls onReach.
func NewThreshold(onReach func()) *Threshold {
	return &Threshold{onReach: onReach}
}

// Visit reports that the item at index became visible while target (with ok
// as returned by NextOffsetToNotify) was the trigger point. It returns true
// when the callback ran.
func (t *Threshold) Visit(index, target int, ok bool) bool {
	if !ok || index < target {
		return false
	}

	t.mu.Lock()
	if t.fired && t.lastSeen == target {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	t.lastSeen = target
	t.mu.Unlock()

	if t.onReach != nil {
		t.onReach()
	}
	return true
}

// Reset forgets the last fired target, e.g. after a refresh.
func (t *Threshold) Reset() {
	t.mu.Lock()
	t.fired = false
	t.lastSeen = 0
	t.mu.Unlock()
}
