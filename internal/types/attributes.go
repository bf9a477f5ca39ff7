package types

// Attributes is an ordered mapping of alias to expression. Methods that
// change the mapping return a new value and leave the receiver untouched.
type Attributes struct {
	keys  []string
	exprs map[string]Expression
}

// NewAttributes builds a mapping from parallel alias and expression lists.
// When an alias repeats, its first expression wins.
func NewAttributes(aliases []string, exprs []Expression) Attributes {
	a := Attributes{
		keys:  make([]string, 0, len(aliases)),
		exprs: make(map[string]Expression, len(aliases)),
	}
	for i, alias := range aliases {
		a = a.with(alias, exprs[i])
	}
	return a
}

// with appends in place; only used on freshly allocated values.
func (a Attributes) with(alias string, e Expression) Attributes {
	if a.exprs == nil {
		a.exprs = make(map[string]Expression)
	}
	if _, ok := a.exprs[alias]; ok {
		return a
	}
	a.keys = append(a.keys, alias)
	a.exprs[alias] = e
	return a
}

// Keys returns the aliases in order.
func (a Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of entries.
func (a Attributes) Len() int {
	return len(a.keys)
}

// Get returns the expression stored under alias.
func (a Attributes) Get(alias string) (Expression, bool) {
	e, ok := a.exprs[alias]
	return e, ok
}

// Contains reports whether alias is present.
func (a Attributes) Contains(alias string) bool {
	_, ok := a.exprs[alias]
	return ok
}

// Each calls fn for every entry in order.
func (a Attributes) Each(fn func(alias string, e Expression)) {
	for _, k := range a.keys {
		fn(k, a.exprs[k])
	}
}

// Restrict keeps the entries whose alias is in names, in the receiver's order.
func (a Attributes) Restrict(names []string) Attributes {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := Attributes{}
	a.Each(func(alias string, e Expression) {
		if keep[alias] {
			out = out.with(alias, e)
		}
	})
	return out
}

// Without drops the named aliases, preserving order.
func (a Attributes) Without(names ...string) Attributes {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := Attributes{}
	a.Each(func(alias string, e Expression) {
		if !drop[alias] {
			out = out.with(alias, e)
		}
	})
	return out
}

// Renamed substitutes aliases found in mapper, preserving order.
func (a Attributes) Renamed(mapper map[string]string) Attributes {
	out := Attributes{}
	a.Each(func(alias string, e Expression) {
		if renamed, ok := mapper[alias]; ok {
			alias = renamed
		}
		out = out.with(alias, e)
	})
	return out
}

// Concat appends the entries of others whose aliases are not yet present.
func (a Attributes) Concat(others ...Attributes) Attributes {
	out := Attributes{}
	a.Each(func(alias string, e Expression) { out = out.with(alias, e) })
	for _, other := range others {
		other.Each(func(alias string, e Expression) { out = out.with(alias, e) })
	}
	return out
}

// Intersect returns the aliases present in both mappings, in the receiver's order.
func (a Attributes) Intersect(other Attributes) []string {
	var common []string
	for _, k := range a.keys {
		if other.Contains(k) {
			common = append(common, k)
		}
	}
	return common
}

// Equal reports whether both mappings hold equal expressions under the same
// aliases in the same order.
func (a Attributes) Equal(other Attributes) bool {
	if len(a.keys) != len(other.keys) {
		return false
	}
	for i, k := range a.keys {
		if other.keys[i] != k || !a.exprs[k].Equal(other.exprs[k]) {
			return false
		}
	}
	return true
}
