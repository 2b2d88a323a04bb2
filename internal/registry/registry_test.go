package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConnections(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "connections.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve(t *testing.T) {
	t.Parallel()

	path := writeConnections(t, `[
		{"name": "main", "connection_string": "sqlite:///test.db"},
		{"name": "reporting", "connection_string": "postgres://localhost/reports"}
	]`)
	r := New(path)

	t.Run("known name", func(t *testing.T) {
		got, err := r.Resolve("main")
		require.NoError(t, err)
		assert.Equal(t, "sqlite:///test.db", got)
	})

	t.Run("unknown name mentions the name", func(t *testing.T) {
		_, err := r.Resolve("missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "missing")
		assert.Equal(t, "Connexion 'missing' introuvable.", err.Error())
	})

	t.Run("first match wins", func(t *testing.T) {
		dup := New(writeConnections(t, `[
			{"name": "db", "connection_string": "first"},
			{"name": "db", "connection_string": "second"}
		]`))
		got, err := dup.Resolve("db")
		require.NoError(t, err)
		assert.Equal(t, "first", got)
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("file order preserved", func(t *testing.T) {
		r := New(writeConnections(t, `[
			{"name": "zeta", "connection_string": "a"},
			{"name": "alpha", "connection_string": "b"}
		]`))
		names, err := r.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha"}, names)
	})

	t.Run("entries without a name are skipped", func(t *testing.T) {
		r := New(writeConnections(t, `[
			{"connection_string": "orphan"},
			{"name": "kept", "connection_string": "c"}
		]`))
		names, err := r.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"kept"}, names)
	})

	t.Run("missing file", func(t *testing.T) {
		r := New(filepath.Join(t.TempDir(), "absent.json"))
		_, err := r.List()
		assert.Error(t, err)
	})

	t.Run("not a list", func(t *testing.T) {
		r := New(writeConnections(t, `{"name": "oops"}`))
		_, err := r.List()
		assert.Error(t, err)
	})
}

// External edits must be visible without a restart: the registry re-reads the
// file on every call.
func TestRegistryRereadsFile(t *testing.T) {
	t.Parallel()

	path := writeConnections(t, `[{"name": "main", "connection_string": "one"}]`)
	r := New(path)

	got, err := r.Resolve("main")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "main", "connection_string": "two"}]`), 0o644))

	got, err = r.Resolve("main")
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}
