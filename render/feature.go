package render

import "slices"

// Feature is one entry in the host pipeline's pass list. The scheduler
// inserts a capture feature per blur layer while that layer needs the
// scene rendered into its source target, and removes it otherwise.
//
// Hosts execute the features they currently hold in list order during
// frame rendering; acrylic only manages membership.
type Feature interface {
	// Name returns a stable identifier for diagnostics.
	Name() string

	// Event returns the point in the host frame at which the feature's
	// capture should run.
	Event() CaptureEvent
}

// FeatureList is the host pipeline's mutable, ordered feature list.
//
// The scheduler requires exactly three operations: insert at an index,
// remove by identity, and membership query. Features compare by
// identity (pointer equality), never by name.
type FeatureList interface {
	// Insert adds f at index, shifting later features. An index past
	// the end appends.
	Insert(f Feature, index int)

	// Remove deletes f if present. Removing an absent feature is a
	// no-op.
	Remove(f Feature)

	// Contains reports whether f is in the list.
	Contains(f Feature) bool

	// Len returns the number of features.
	Len() int
}

// PassList is a slice-backed FeatureList for hosts that have no feature
// machinery of their own, and for tests. The zero value is ready to
// use. Not safe for concurrent use; all mutation happens on the render
// thread.
type PassList struct {
	features []Feature
}

// Insert adds f at index, clamping index to [0, Len()].
func (l *PassList) Insert(f Feature, index int) {
	if f == nil {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(l.features) {
		index = len(l.features)
	}
	l.features = slices.Insert(l.features, index, f)
}

// Remove deletes f by identity.
func (l *PassList) Remove(f Feature) {
	for i, g := range l.features {
		if g == f {
			l.features = slices.Delete(l.features, i, i+1)
			return
		}
	}
}

// Contains reports whether f is in the list.
func (l *PassList) Contains(f Feature) bool {
	return slices.Contains(l.features, f)
}

// Len returns the number of features.
func (l *PassList) Len() int {
	return len(l.features)
}

// Features returns the current list in order. The returned slice is a
// copy.
func (l *PassList) Features() []Feature {
	return slices.Clone(l.features)
}

// Ensure PassList implements FeatureList.
var _ FeatureList = (*PassList)(nil)
