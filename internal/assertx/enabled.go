//go:build !assertions_disabled

package assertx

import "fmt"

// True panics if value is false.
//
// The optional args provide a formatted panic message: if the first arg is
// a string, it's used as a format string with the remaining args; otherwise
// all args are included verbatim.
func True(value bool, args ...any) {
	if value {
		return
	}

	if len(args) == 0 {
		panic("assertion failed")
	}

	first := args[0]
	remaining := args[1:]

	if format, ok := first.(string); ok {
		panic(fmt.Sprintf(format, remaining...))
	}

	panic(fmt.Sprintf("assertion failed: %v", args))
}
