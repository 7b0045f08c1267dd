// Package core runs one rendir session: it lists the roots, hands the
// numbered listing to an editor, turns the edited text into a plan and
// applies it.
//
// Everything up to and including planning is free of side effects on the
// listed directories. Errors found there (a malformed line, an unknown
// index, two entries aimed at one path, a rename cycle that cannot be
// broken) end the run before anything is touched. Once applying starts,
// each operation succeeds or fails on its own and the RunResult records
// every outcome.
package core
