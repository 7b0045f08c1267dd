// Package output prints what a rendir run does.
//
// The Reporter writes the verbose per-operation lines and the dry-run plan
// to stdout, and diagnostics to stderr. Styling comes from the styles
// package and is only applied when the output is a color terminal.
package output
