// Package testutil holds helpers shared by rendir's package tests: real
// directory trees under t.TempDir, in-memory afero trees and a testify mock
// of types.FS for failure injection.
package testutil
