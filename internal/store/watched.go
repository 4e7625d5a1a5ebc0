package store

// Segments is the default number of equal playback segments tracked by the
// watched bitmask.
const Segments = 10

// AllWatched returns the bitmask with all n segment bits set.
func AllWatched(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// SegmentBit returns the bit for the segment containing position, which is
// clamped to [0, 1]. Position 1 belongs to the last segment.
func SegmentBit(position float64, n int) uint64 {
	if n <= 0 {
		return 0
	}
	i := int(position * float64(n))
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	return 1 << uint(i)
}

// Unseen reports whether no segment has been watched.
func Unseen(watched uint64) bool {
	return watched == 0
}

// Watching reports whether some but not all segments have been watched.
func Watching(watched uint64, n int) bool {
	return watched > 0 && watched < AllWatched(n)
}

// WatchedCount returns how many of the n segments are set.
func WatchedCount(watched uint64, n int) int {
	count := 0
	for i := 0; i < n && i < 64; i++ {
		if watched&(1<<uint(i)) != 0 {
			count++
		}
	}
	return count
}
