package conf

import (
	"iter"
	"slices"
	"strings"
)

// Var is a named value in a [Vars] store.
type Var struct {
	Name  string
	Value string
}

// Vars is the variable store behind the get and put builtins.
// Entries are kept in ascending name order with unique names.
// The zero value is an empty store.
type Vars struct {
	list []Var
}

func (v *Vars) search(name string) (int, bool) {
	return slices.BinarySearchFunc(v.list, name,
		func(e Var, name string) int { return strings.Compare(e.Name, name) })
}

// Get returns the value of name and whether it is set.
func (v *Vars) Get(name string) (string, bool) {
	i, ok := v.search(name)
	if !ok {
		return "", false
	}

	return v.list[i].Value, true
}

// Put sets name to value, replacing any previous value.
// An empty value deletes name.
func (v *Vars) Put(name, value string) {
	if value == "" {
		v.Delete(name)

		return
	}

	i, ok := v.search(name)
	if ok {
		v.list[i].Value = value

		return
	}

	v.list = slices.Insert(v.list, i, Var{Name: name, Value: value})
}

// Delete removes name and reports whether it was set.
func (v *Vars) Delete(name string) bool {
	i, ok := v.search(name)
	if ok {
		v.list = slices.Delete(v.list, i, i+1)
	}

	return ok
}

// Len returns the number of variables.
func (v *Vars) Len() int { return len(v.list) }

// All returns an iterator over variables in name order.
func (v *Vars) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range v.list {
			if !yield(e.Name, e.Value) {
				return
			}
		}
	}
}

// Names returns the variable names in order.
func (v *Vars) Names() []string {
	names := make([]string, len(v.list))
	for i, e := range v.list {
		names[i] = e.Name
	}

	return names
}
