package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// SelectionMode tells which of the three select-list forms a Selection holds.
type SelectionMode int

const (
	SelectStar    SelectionMode = iota // SELECT *
	SelectMapping                      // SELECT expr AS alias, ...
	SelectSingle                       // SELECT expr
)

// Selection is the select list of a query.
type Selection struct {
	attrs Attributes
	expr  Expression
	mode  SelectionMode
}

// Star selects every column of the source.
func Star() Selection {
	return Selection{mode: SelectStar}
}

// Mapping selects the given aliased expressions.
func Mapping(attrs Attributes) Selection {
	return Selection{mode: SelectMapping, attrs: attrs}
}

// Single selects one bare expression.
func Single(e Expression) Selection {
	return Selection{mode: SelectSingle, expr: e}
}

// Mode returns the selection form.
func (s Selection) Mode() SelectionMode {
	return s.mode
}

// Attributes returns the mapping of a SelectMapping selection.
func (s Selection) Attributes() (Attributes, bool) {
	return s.attrs, s.mode == SelectMapping
}

// Expression returns the expression of a SelectSingle selection.
func (s Selection) Expression() (Expression, bool) {
	return s.expr, s.mode == SelectSingle
}

// Equal compares mode and contents.
func (s Selection) Equal(other Selection) bool {
	if s.mode != other.mode {
		return false
	}
	switch s.mode {
	case SelectMapping:
		return s.attrs.Equal(other.attrs)
	case SelectSingle:
		return s.expr.Equal(other.expr)
	default:
		return true
	}
}

func (s Selection) String() string {
	switch s.mode {
	case SelectMapping:
		items := make([]string, 0, s.attrs.Len())
		s.attrs.Each(func(alias string, e Expression) {
			text := e.String()
			trailing := text[strings.LastIndexByte(text, '.')+1:]
			if alias == "" || trailing == alias {
				items = append(items, text)
				return
			}
			items = append(items, text+" AS "+alias)
		})
		return strings.Join(items, ", ")
	case SelectSingle:
		return s.expr.String()
	default:
		return "*"
	}
}

// Query is an immutable SELECT statement.
type Query struct {
	source   SourceRef
	where    *Expression
	start    *int
	stop     *int
	attrs    Selection
	distinct bool
}

// NewQuery creates a SELECT * query over source.
func NewQuery(source SourceRef) Query {
	return Query{source: source, attrs: Star()}
}

// Distinct reports whether SELECT DISTINCT is set.
func (q Query) Distinct() bool { return q.distinct }

// Attrs returns the select list.
func (q Query) Attrs() Selection { return q.attrs }

// Source returns the FROM source.
func (q Query) Source() SourceRef { return q.source }

// Where returns the filter expression, if any.
func (q Query) Where() (Expression, bool) {
	if q.where == nil {
		return Expression{}, false
	}
	return *q.where, true
}

// Window returns the row window bounds; nil means unset.
func (q Query) Window() (start, stop *int) {
	return copyInt(q.start), copyInt(q.stop)
}

// Change overrides one field of a query copy.
type Change func(*Query)

// SetDistinct overrides the distinct flag.
func SetDistinct(distinct bool) Change {
	return func(q *Query) { q.distinct = distinct }
}

// SetAttrs overrides the select list.
func SetAttrs(s Selection) Change {
	return func(q *Query) { q.attrs = s }
}

// SetSource overrides the FROM source.
func SetSource(r SourceRef) Change {
	return func(q *Query) { q.source = r }
}

// SetWhere overrides the filter. A nil expression removes it.
func SetWhere(e *Expression) Change {
	return func(q *Query) {
		if e == nil {
			q.where = nil
			return
		}
		w := *e
		q.where = &w
	}
}

// SetWindow overrides both row window bounds.
func SetWindow(start, stop *int) Change {
	return func(q *Query) {
		q.start = copyInt(start)
		q.stop = copyInt(stop)
	}
}

// WithChanges returns a copy with the given fields overridden. Unchanged
// fields are shared with the receiver.
func (q Query) WithChanges(changes ...Change) Query {
	c := q
	for _, change := range changes {
		change(&c)
	}
	return c
}

// Copy returns an identical query.
func (q Query) Copy() Query {
	return q.WithChanges()
}

// Render compiles the query to SQL text terminated with a semicolon.
func (q Query) Render() (string, error) {
	window, err := q.renderWindow()
	if err != nil {
		return "", err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("SELECT ")
	if q.distinct {
		buf.WriteString("DISTINCT ")
	}
	buf.WriteString(q.attrs.String())
	buf.WriteString(" FROM ")
	buf.WriteString(q.source.String())
	if q.where != nil {
		buf.WriteString(" WHERE ")
		buf.WriteString(q.where.String())
	}
	buf.WriteString(window)
	buf.WriteByte(';')

	return buf.String(), nil
}

func (q Query) renderWindow() (string, error) {
	switch {
	case q.start == nil && q.stop == nil:
		return "", nil
	case q.start != nil && q.stop != nil:
		if *q.stop < *q.start || *q.start < 0 {
			return "", fmt.Errorf("%w: start %d, stop %d", ErrMalformedWindow, *q.start, *q.stop)
		}
		return " LIMIT " + strconv.Itoa(*q.stop-*q.start) + " OFFSET " + strconv.Itoa(*q.start), nil
	case q.stop != nil:
		if *q.stop < 0 {
			return "", fmt.Errorf("%w: negative stop %d", ErrMalformedWindow, *q.stop)
		}
		return " LIMIT " + strconv.Itoa(*q.stop), nil
	default:
		return "", fmt.Errorf("%w: start %d without stop", ErrMalformedWindow, *q.start)
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
