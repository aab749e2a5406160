package term

import (
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// DepSet is an insertion-ordered set of variables: what must be supplied to
// instantiate a term, and the payload of a FromType wrapper.
// The zero value is an empty set ready to use.
type DepSet struct {
	order   []VarID
	members *set.Set[VarID]
}

// NewDepSet builds a set from vars, keeping first occurrences.
func NewDepSet(vars ...VarID) DepSet {
	var d DepSet
	for _, v := range vars {
		d.Add(v)
	}
	return d
}

// Add appends v unless already present. Reports whether v was added.
func (d *DepSet) Add(v VarID) bool {
	if d.members == nil {
		d.members = set.New[VarID](4)
	}
	if !d.members.Insert(v) {
		return false
	}
	d.order = append(d.order, v)
	return true
}

// Remove deletes v, keeping the order of the rest.
func (d *DepSet) Remove(v VarID) {
	if !d.Contains(v) {
		return
	}
	d.members.Remove(v)
	d.order = slices.DeleteFunc(d.order, func(x VarID) bool { return x == v })
}

// Union adds every member of other, in other's order.
func (d *DepSet) Union(other DepSet) {
	for _, v := range other.order {
		d.Add(v)
	}
}

func (d DepSet) Contains(v VarID) bool {
	return d.members != nil && d.members.Contains(v)
}

func (d DepSet) Len() int { return len(d.order) }

func (d DepSet) IsEmpty() bool { return len(d.order) == 0 }

// Vars returns the members in insertion order. The slice is a copy.
func (d DepSet) Vars() []VarID { return slices.Clone(d.order) }

// Sorted returns the members in declaration order.
func (d DepSet) Sorted() []VarID {
	out := slices.Clone(d.order)
	slices.Sort(out)
	return out
}

// Without returns a copy of d lacking every variable for which drop is true.
func (d DepSet) Without(drop func(VarID) bool) DepSet {
	var out DepSet
	for _, v := range d.order {
		if !drop(v) {
			out.Add(v)
		}
	}
	return out
}

// Clone returns an independent copy.
func (d DepSet) Clone() DepSet {
	return d.Without(func(VarID) bool { return false })
}

// Subset reports whether every member of d is in other.
func (d DepSet) Subset(other DepSet) bool {
	for _, v := range d.order {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// Equal compares membership, ignoring order.
func (d DepSet) Equal(other DepSet) bool {
	return d.Len() == other.Len() && d.Subset(other)
}

// Intersects reports whether d and other share a member.
func (d DepSet) Intersects(other DepSet) bool {
	for _, v := range d.order {
		if other.Contains(v) {
			return true
		}
	}
	return false
}

func (d DepSet) String() string {
	parts := make([]string, len(d.order))
	for i, v := range d.order {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
