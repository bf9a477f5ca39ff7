package qframe

// Slice is a half-open row window [Start, Stop). A nil bound is open.
type Slice struct {
	Start *int
	Stop  *int
}

// Span returns the window [start, stop).
func Span(start, stop int) Slice {
	return Slice{Start: &start, Stop: &stop}
}

// To returns the window of the first stop rows.
func To(stop int) Slice {
	return Slice{Stop: &stop}
}

// From returns the window starting at row start. Rendering it fails with
// ErrMalformedWindow since LIMIT needs an upper bound.
func From(start int) Slice {
	return Slice{Start: &start}
}
