// Package fuzztests houses Go fuzz harnesses for the scope stack and the
// program generator. They look for panics, accounting drift, and programs
// that goja refuses to parse.
//
// Run with: go test ./internal/fuzz -fuzz=FuzzScopeStackOps
package fuzztests
