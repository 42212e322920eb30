package assert

import "github.com/oomph-ac/momentum/oerror"

// IsTrue panics with an internal MovementError if ok is false.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
