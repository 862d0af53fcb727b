package buffer

// Region is an optional selection held as an anchor and an end point.
// It is active only while both ends are set. The ends are kept in the
// order they were given and normalized on read.
type Region struct {
	anchor    Point
	end       Point
	hasAnchor bool
	hasEnd    bool
}

// NewRegion returns an active region between two points.
func NewRegion(anchor, end Point) Region {
	return Region{anchor: anchor, end: end, hasAnchor: true, hasEnd: true}
}

// Active reports whether both ends are set.
func (r Region) Active() bool {
	return r.hasAnchor && r.hasEnd
}

// Anchor returns the anchor point and whether it is set.
func (r Region) Anchor() (Point, bool) {
	return r.anchor, r.hasAnchor
}

// End returns the end point and whether it is set.
func (r Region) End() (Point, bool) {
	return r.end, r.hasEnd
}

// Span returns the normalized extent of an active region.
func (r Region) Span() (Span, bool) {
	if !r.Active() {
		return Span{}, false
	}
	start, end := orderPoints(r.anchor, r.end)
	return Span{Start: start, End: end}, true
}

// String returns a human-readable representation of the region.
func (r Region) String() string {
	s, ok := r.Span()
	if !ok {
		return "(no region)"
	}
	return s.String()
}
