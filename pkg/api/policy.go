package api

// OffsetPolicy decides how the cursor moves for a given offset type.
type OffsetPolicy[K comparable, V any] interface {
	// HasMore reports whether another page is likely available after items
	// were loaded from offset with the given limit.
	HasMore(dir Direction, limit int, offset K, items []V) bool

	// NewOffset computes the cursor for the next page.
	NewOffset(current K, items []V) K
}

// IntOffsetPolicy is the policy for count-based integer offsets: the offset
// is the number of items to skip.
//
// A full page means "probably more"; a short or empty page means the source is
// exhausted. When the total is an exact multiple of the limit this costs one
// extra request that returns an empty page.
type IntOffsetPolicy[V any] struct{}

var _ OffsetPolicy[int, struct{}] = IntOffsetPolicy[struct{}]{}

func (IntOffsetPolicy[V]) HasMore(_ Direction, limit int, _ int, items []V) bool {
	return len(items) >= limit
}

// NewOffset advances by the number of items actually returned, not by the
// requested limit, so a short final page is accounted for correctly.
func (IntOffsetPolicy[V]) NewOffset(current int, items []V) int {
	return current + len(items)
}

// KeysetPolicy pages by a key taken from the last loaded item, e.g. a
// creation timestamp or a string id. KeyOf must be non-nil.
type KeysetPolicy[K comparable, V any] struct {
	KeyOf func(V) K
}

func (p KeysetPolicy[K, V]) HasMore(_ Direction, limit int, _ K, items []V) bool {
	return len(items) >= limit
}

// NewOffset returns the key of the last item, or current for an empty page.
func (p KeysetPolicy[K, V]) NewOffset(current K, items []V) K {
	if len(items) == 0 {
		return current
	}
	return p.KeyOf(items[len(items)-1])
}
