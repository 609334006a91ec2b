package shared

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// exportAll lets cmp.Equal descend into unexported struct fields instead of
// panicking on them.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// equal compares by value: == when the dynamic types are comparable,
// go-cmp otherwise (slices, maps, structs holding them).
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// interface values holding comparable types can still panic for
		// e.g. struct fields of interface type holding slices
		if ok, safe := safeEq(a, b); safe {
			return ok
		}
	}
	return cmp.Equal(a, b, exportAll)
}

func safeEq(a, b any) (eq, safe bool) {
	defer func() {
		if recover() != nil {
			safe = false
		}
	}()
	return a == b, true
}
