package render

import "github.com/zoobzio/qframe/internal/types"

// Capabilities describes the parts of the query grammar a dialect accepts.
type Capabilities struct {
	RightJoin   bool // RIGHT JOIN
	OuterJoin   bool // FULL OUTER JOIN
	LimitOffset bool // LIMIT n OFFSET m
}

// Full accepts the whole grammar.
var Full = Capabilities{RightJoin: true, OuterJoin: true, LimitOffset: true}

// Check walks q and reports the first construct caps does not allow.
func Check(q types.Query, dialect string, caps Capabilities) error {
	start, stop := q.Window()
	if (start != nil || stop != nil) && !caps.LimitOffset {
		return NewUnsupportedFeatureError(dialect, "LIMIT/OFFSET", "materialize without a row window")
	}
	return checkSource(q.Source(), dialect, caps)
}

func checkSource(ref types.SourceRef, dialect string, caps Capabilities) error {
	joined, ok := ref.Source.(*types.JoinedSource)
	if !ok {
		return nil
	}
	if err := checkSource(joined.Left(), dialect, caps); err != nil {
		return err
	}
	for _, j := range joined.Joins() {
		switch {
		case j.Kind == types.RightJoin && !caps.RightJoin:
			return NewUnsupportedFeatureError(dialect, "RIGHT JOIN", "swap the operands and use a LEFT JOIN")
		case j.Kind == types.OuterJoin && !caps.OuterJoin:
			return NewUnsupportedFeatureError(dialect, "FULL OUTER JOIN", "use a LEFT JOIN and a RIGHT JOIN")
		}
		if err := checkSource(j.Right, dialect, caps); err != nil {
			return err
		}
	}
	return nil
}
