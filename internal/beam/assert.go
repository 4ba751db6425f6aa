//go:build !debug

package beam

// Assert is compiled out of release builds.
func Assert(cond bool, msg string) {}
