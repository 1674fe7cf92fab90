//go:build !unix

package file

// Windows reports cross volume moves with different errors, Move falls back to
// copy on any rename failure anyway.
func isEXDEV(err error) bool { return false }
