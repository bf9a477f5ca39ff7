package types

// Field names one of the fixed set of query fields.
type Field string

const (
	FieldDistinct Field = "distinct"
	FieldAttrs    Field = "attrs"
	FieldSource   Field = "source"
	FieldWhere    Field = "where"
	FieldStart    Field = "start"
	FieldStop     Field = "stop"
)

// Fields returns the query fields in declaration order. This list is the
// whole schema of a Query; Diff compares exactly these.
func Fields() []Field {
	return []Field{FieldDistinct, FieldAttrs, FieldSource, FieldWhere, FieldStart, FieldStop}
}

// Difference holds the two differing values of a field.
type Difference struct {
	Self  any
	Other any
}

// Value returns the value of a field.
func (q Query) Value(f Field) any {
	switch f {
	case FieldDistinct:
		return q.distinct
	case FieldAttrs:
		return q.attrs
	case FieldSource:
		return q.source
	case FieldWhere:
		return copyExpr(q.where)
	case FieldStart:
		return copyInt(q.start)
	case FieldStop:
		return copyInt(q.stop)
	default:
		return nil
	}
}

// Diff compares two queries field by field and returns the fields that differ.
func (q Query) Diff(other Query) map[Field]Difference {
	diff := make(map[Field]Difference)
	for _, f := range Fields() {
		if !q.fieldEqual(other, f) {
			diff[f] = Difference{Self: q.Value(f), Other: other.Value(f)}
		}
	}
	return diff
}

// Equal reports whether Diff would find no difference.
func (q Query) Equal(other Query) bool {
	return len(q.Diff(other)) == 0
}

func (q Query) fieldEqual(other Query, f Field) bool {
	switch f {
	case FieldDistinct:
		return q.distinct == other.distinct
	case FieldAttrs:
		return q.attrs.Equal(other.attrs)
	case FieldSource:
		return q.source.Equal(other.source)
	case FieldWhere:
		if q.where == nil || other.where == nil {
			return q.where == nil && other.where == nil
		}
		return q.where.Equal(*other.where)
	case FieldStart:
		return intEqual(q.start, other.start)
	case FieldStop:
		return intEqual(q.stop, other.stop)
	default:
		return true
	}
}

func intEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyExpr(e *Expression) *Expression {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
