package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectPathCreatesDirectory(t *testing.T) {
	r := NewResolver(t.TempDir())

	dir, err := r.ProjectPath("project-1")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "project-1", filepath.Base(dir))

	// Resolving again reuses the same directory.
	again, err := r.ProjectPath("project-1")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestProjectPathSanitizesIdentifier(t *testing.T) {
	r := NewResolver(t.TempDir())

	dir, err := r.ProjectPath("../../etc/passwd")
	require.NoError(t, err)
	base := filepath.Base(dir)
	assert.NotContains(t, base, "..")
	assert.NotContains(t, base, "/")
}

func TestStorageNameUniqueAndTraceable(t *testing.T) {
	a := StorageName("Q3 Report.PDF")
	b := StorageName("Q3 Report.PDF")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".pdf"), "extension is kept lowercased: %s", a)
	assert.Contains(t, a, "Q3_Report")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "my_file", sanitize("my file"))
	assert.Equal(t, "a-b_c", sanitize(" a-b/c "))
	assert.Equal(t, "unnamed", sanitize("///"))
	assert.Equal(t, "unnamed", sanitize(""))
}
