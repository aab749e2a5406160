package term

import "fmt"

// VarID identifies a Variable. Ids are allocated sequentially, so they also
// give the deterministic declaration order used for positional binding.
type VarID uint32

func (v VarID) String() string { return fmt.Sprintf("$%d", uint32(v)) }

// Variable is a free-variable identity, distinct from any term referencing it.
type Variable struct {
	ID   VarID
	Name string
	// Type is the declared type. NoID until set by the binder.
	Type ID
}

func (v Variable) String() string {
	if v.Name == "" {
		return v.ID.String()
	}
	return fmt.Sprintf("%s%s", v.Name, v.ID)
}
