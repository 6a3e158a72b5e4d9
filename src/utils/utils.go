package utils

import (
	"fmt"

	"git.nextdev.network/nextdev/nextdev/src/oops"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func Max[T int | int32 | int64](a, b T) T {
	if a > b {
		return a
	}
	return b
}

/*
Takes an (error) return and panics if there is an error.
Helps avoid `if err != nil` in scripts. Use sparingly.
*/
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

/*
Takes a (something, error) return and panics if there is an error.
Helps avoid `if err != nil` in scripts. Use sparingly.
*/
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

/*
Recover a panic and convert it to a returned error. Call it like so:

	func MyFunc() (err error) {
		defer utils.RecoverPanicAsError(&err)
	}

If an error was already present, the panicked error will take precedence.
*/
func RecoverPanicAsError(err *error) {
	if r := recover(); r != nil {
		var recoveredErr error
		if rerr, ok := r.(error); ok {
			recoveredErr = rerr
		} else {
			recoveredErr = fmt.Errorf("panic with value: %v", r)
		}
		*err = oops.New(recoveredErr, "panic recovered as error")
	}
}
