package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wiki-api 1.2.3\n", out)
}

func TestImportExport_SQLite(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_URL", "")
	t.Setenv("MONGODB_URI", "")

	src := filepath.Join(t.TempDir(), "content")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "rest.md"), []byte("---\ntitle: REST\n---\nRepresentational state transfer"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "api.md"), []byte("Application programming interface"), 0o644))

	storeURL := "sqlite://" + filepath.Join(t.TempDir(), "wiki.db")

	out, err := run(t, "import", src, "--store-url", storeURL)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 articles (0 skipped)\n", out)

	dst := filepath.Join(t.TempDir(), "backup")
	out, err = run(t, "export", dst, "--store-url", storeURL, "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 articles")

	content, err := os.ReadFile(filepath.Join(dst, "rest.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "title = 'REST'")
	assert.Contains(t, string(content), "Representational state transfer")

	_, err = os.Stat(filepath.Join(dst, "api.md"))
	assert.NoError(t, err)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "export", t.TempDir(), "--store-url", "memory://", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestImport_RequiresDir(t *testing.T) {
	_, err := run(t, "import", "--store-url", "memory://")
	assert.Error(t, err)
}

func TestOpenStore_UnknownScheme(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "import", t.TempDir(), "--store-url", "cassandra://localhost")
	assert.Error(t, err)
}
