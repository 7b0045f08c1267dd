// Package filesystem provides the types.FS implementations used by rendir:
// the real OS filesystem and an afero-backed one for in-memory trees.
package filesystem
