//go:build debug

package beam

// Assert panics with msg when cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		panic("beam: assertion failed: " + msg)
	}
}
