package types

import (
	"fmt"
	"strings"
)

// Source is a queryable origin for the FROM clause.
type Source interface {
	// Attributes returns the columns visible through the source, qualified
	// by alias when one is given.
	Attributes(alias string) Attributes
	// String renders the source for the FROM clause.
	String() string
	// Equal reports structural equality.
	Equal(other Source) bool
}

// SourceRef is a source together with its optional alias.
type SourceRef struct {
	Source Source
	Alias  string
}

// Attributes returns the source's attributes under the reference alias.
func (r SourceRef) Attributes() Attributes {
	if r.Source == nil {
		return Attributes{}
	}
	return r.Source.Attributes(r.Alias)
}

// String renders "<source>[ AS <alias>]".
func (r SourceRef) String() string {
	if r.Source == nil {
		return ""
	}
	if r.Alias != "" {
		return r.Source.String() + " AS " + r.Alias
	}
	return r.Source.String()
}

// qualifier is the name columns of the reference are qualified by.
func (r SourceRef) qualifier() string {
	if r.Alias != "" {
		return r.Alias
	}
	if base, ok := r.Source.(*BaseSource); ok {
		return base.name
	}
	if r.Source == nil {
		return ""
	}
	return r.Source.String()
}

// Equal compares source and alias.
func (r SourceRef) Equal(other SourceRef) bool {
	if r.Alias != other.Alias {
		return false
	}
	if r.Source == nil || other.Source == nil {
		return r.Source == nil && other.Source == nil
	}
	return r.Source.Equal(other.Source)
}

// BaseSource is a catalog table.
type BaseSource struct {
	name    string
	columns []string
}

// NewBaseSource creates a table source from catalog column names.
func NewBaseSource(name string, columns []string) *BaseSource {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &BaseSource{name: name, columns: cols}
}

// Name returns the table name.
func (s *BaseSource) Name() string {
	return s.name
}

// Attributes wraps each column as a reference qualified by alias, or by the
// table name when alias is empty.
func (s *BaseSource) Attributes(alias string) Attributes {
	qualifier := alias
	if qualifier == "" {
		qualifier = s.name
	}
	exprs := make([]Expression, len(s.columns))
	for i, col := range s.columns {
		exprs[i] = Ref(col, qualifier)
	}
	return NewAttributes(s.columns, exprs)
}

func (s *BaseSource) String() string {
	return s.name
}

// Equal compares table name and column list.
func (s *BaseSource) Equal(other Source) bool {
	o, ok := other.(*BaseSource)
	if !ok {
		return false
	}
	if s == o {
		return true
	}
	if s.name != o.name || len(s.columns) != len(o.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}

// JoinKind is the type of a SQL join.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER"
	LeftJoin  JoinKind = "LEFT"
	RightJoin JoinKind = "RIGHT"
	OuterJoin JoinKind = "OUTER"
)

// ParseJoinKind accepts inner, left, right and outer in any case. An empty
// string means inner.
func ParseJoinKind(how string) (JoinKind, error) {
	switch JoinKind(strings.ToUpper(strings.TrimSpace(how))) {
	case "", InnerJoin:
		return InnerJoin, nil
	case LeftJoin:
		return LeftJoin, nil
	case RightJoin:
		return RightJoin, nil
	case OuterJoin:
		return OuterJoin, nil
	default:
		return "", fmt.Errorf("%w: join kind %q", ErrUnsupportedKey, how)
	}
}

// Keyword returns the SQL words placed before JOIN. An outer join is
// written as FULL OUTER, the form every supported engine accepts.
func (k JoinKind) Keyword() string {
	if k == OuterJoin {
		return "FULL OUTER"
	}
	return string(k)
}

// Join is one entry of a join chain.
type Join struct {
	Right SourceRef
	Kind  JoinKind
	On    [2]Expression
}

// JoinedSource is a left source followed by a flat list of joins.
type JoinedSource struct {
	left  SourceRef
	joins []Join
}

// NewJoin joins right onto left. A joined left is extended rather than
// nested, so chains always stay flat. A joined right is spliced into the
// chain when every join involved is inner, since only then does the
// reordering keep the result unchanged.
func NewJoin(left, right SourceRef, on [2]Expression, kind JoinKind) (*JoinedSource, error) {
	head := left
	var joins []Join
	if joined, ok := left.Source.(*JoinedSource); ok && left.Alias == "" {
		head = joined.left
		joins = make([]Join, len(joined.joins), len(joined.joins)+1)
		copy(joins, joined.joins)
	}

	chain, ok := right.Source.(*JoinedSource)
	if !ok {
		return &JoinedSource{left: head, joins: append(joins, Join{Right: right, Kind: kind, On: on})}, nil
	}
	if right.Alias != "" {
		return nil, fmt.Errorf("%w: aliased join chain on the right", ErrNotImplemented)
	}
	spliced, err := splice(head, joins, chain, on, kind)
	if err != nil {
		return nil, err
	}
	return &JoinedSource{left: head, joins: spliced}, nil
}

// splice appends the members of chain to joins, choosing at each step a
// member whose join condition refers to a table already in place.
func splice(head SourceRef, joins []Join, chain *JoinedSource, on [2]Expression, kind JoinKind) ([]Join, error) {
	if kind != InnerJoin {
		return nil, fmt.Errorf("%w: %s join onto a join chain", ErrNotImplemented, kind)
	}
	for _, j := range chain.joins {
		if j.Kind != InnerJoin {
			return nil, fmt.Errorf("%w: join chain containing a %s join", ErrNotImplemented, j.Kind)
		}
	}

	placed := map[string]bool{head.qualifier(): true}
	for _, j := range joins {
		placed[j.Right.qualifier()] = true
	}

	pending := []SourceRef{chain.left}
	conds := [][2]Expression{on}
	for _, j := range chain.joins {
		pending = append(pending, j.Right)
		conds = append(conds, j.On)
	}

	for len(pending) > 0 {
		i, c, cond, ok := nextMember(pending, conds, placed)
		if !ok {
			return nil, fmt.Errorf("join onto %s: %w: no condition reaches a joined table",
				pending[0], ErrUnknownIdentifier)
		}
		member := pending[i]
		joins = append(joins, Join{Right: member, Kind: InnerJoin, On: cond})
		placed[member.qualifier()] = true
		pending = append(pending[:i:i], pending[i+1:]...)
		conds = append(conds[:c:c], conds[c+1:]...)
	}
	return joins, nil
}

// nextMember finds the first pending member joined by some condition to a
// placed table. The condition is returned placed side first.
func nextMember(pending []SourceRef, conds [][2]Expression, placed map[string]bool) (int, int, [2]Expression, bool) {
	for i, member := range pending {
		q := member.qualifier()
		for c, cond := range conds {
			l, r := cond[0].Source(), cond[1].Source()
			switch {
			case r == q && placed[l]:
				return i, c, cond, true
			case l == q && placed[r]:
				return i, c, [2]Expression{cond[1], cond[0]}, true
			}
		}
	}
	return 0, 0, [2]Expression{}, false
}

// Left returns the canonical left source.
func (s *JoinedSource) Left() SourceRef {
	return s.left
}

// Joins returns a copy of the join list.
func (s *JoinedSource) Joins() []Join {
	out := make([]Join, len(s.joins))
	copy(out, s.joins)
	return out
}

// Attributes returns the left source's attributes followed by those of each
// joined source, left to right. The alias argument is ignored because every
// member carries its own.
func (s *JoinedSource) Attributes(string) Attributes {
	rights := make([]Attributes, len(s.joins))
	for i, j := range s.joins {
		rights[i] = j.Right.Attributes()
	}
	return s.left.Attributes().Concat(rights...)
}

func (s *JoinedSource) String() string {
	var b strings.Builder
	b.WriteString(s.left.String())
	for _, j := range s.joins {
		fmt.Fprintf(&b, " %s JOIN %s ON %s=%s", j.Kind.Keyword(), j.Right.String(), j.On[0], j.On[1])
	}
	return b.String()
}

// Equal compares the left source and every join entry.
func (s *JoinedSource) Equal(other Source) bool {
	o, ok := other.(*JoinedSource)
	if !ok {
		return false
	}
	if s == o {
		return true
	}
	if !s.left.Equal(o.left) || len(s.joins) != len(o.joins) {
		return false
	}
	for i, j := range s.joins {
		oj := o.joins[i]
		if j.Kind != oj.Kind || !j.Right.Equal(oj.Right) ||
			!j.On[0].Equal(oj.On[0]) || !j.On[1].Equal(oj.On[1]) {
			return false
		}
	}
	return true
}
