package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/rendir/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/rendir/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/rendir/internal/version.Date={{.Date}}
)

// String is the one-line version shown by --version
func String() string {
	return Version + " (commit " + Commit + ", built " + Date + ")"
}
