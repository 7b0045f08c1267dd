package testutil

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/arthur-debert/rendir/pkg/filesystem"
	"github.com/arthur-debert/rendir/pkg/types"
)

// NewMemFS creates an in-memory filesystem holding the given tree (same
// naming rules as BuildTree, absolute paths). It returns both the rendir view
// and the underlying afero.Fs for assertions.
func NewMemFS(t *testing.T, names ...string) (types.FS, afero.Fs) {
	t.Helper()

	mem := afero.NewMemMapFs()
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			if err := mem.MkdirAll(strings.TrimSuffix(name, "/"), 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", name, err)
			}
			continue
		}
		if err := afero.WriteFile(mem, name, []byte(name), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
	return filesystem.NewAferoFS(mem), mem
}
