// Package types defines the data shared by every stage of a rendir run:
// snapshot entries, edited buffer lines, operations and plans, apply
// outcomes, and the filesystem interface the stages talk to.
package types
