// Package querycache is a key-addressed cache for backend reads with
// staleness tracking, background revalidation, and optimistic mutation
// transactions. It holds whatever the data layer puts in it; typed access
// is layered on top with generics.
package querycache

// Key addresses one cached read: an entity kind, an operation, and an
// optional parameter. The structure exists so "everything under
// sessions/list" can be invalidated without enumerating parameters.
type Key struct {
	Kind  string
	Op    string
	Param string
}

// ListKey builds a parameterless key.
func ListKey(kind, op string) Key {
	return Key{Kind: kind, Op: op}
}

// ItemKey builds a parameterized key.
func ItemKey(kind, op, param string) Key {
	return Key{Kind: kind, Op: op, Param: param}
}

func (k Key) String() string {
	s := k.Kind + "/" + k.Op
	if k.Param != "" {
		s += "/" + k.Param
	}
	return s
}

// Matches reports whether the key falls under the given prefix. Empty
// prefix components match anything.
func (k Key) Matches(kind, op string) bool {
	if kind != "" && k.Kind != kind {
		return false
	}
	if op != "" && k.Op != op {
		return false
	}
	return true
}
