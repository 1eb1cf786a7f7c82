package topic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsUsable(t *testing.T) {
	catalog := Default()
	assert.Greater(t, catalog.Size(), 10)

	for i := 0; i < 50; i++ {
		picked := catalog.Pick()
		assert.NotEmpty(t, picked.Category)
		assert.NotEmpty(t, picked.Title)
	}
}

func TestPickIsTwoLevel(t *testing.T) {
	catalog, err := NewCatalog([]Category{
		{Name: "A", Topics: []string{"a1", "a2"}},
		{Name: "B", Topics: []string{"b1", "b2", "b3"}},
	})
	require.NoError(t, err)

	var calls []int
	choices := []int{1, 2}
	catalog.SetRandom(func(n int) int {
		calls = append(calls, n)
		v := choices[0]
		choices = choices[1:]
		return v
	})

	assert.Equal(t, Topic{Category: "B", Title: "b3"}, catalog.Pick())
	assert.Equal(t, []int{2, 3}, calls)
}

func TestNewCatalogDropsEmptyEntries(t *testing.T) {
	catalog, err := NewCatalog([]Category{
		{Name: "  ", Topics: []string{"orphan"}},
		{Name: "Empty", Topics: []string{" ", ""}},
		{Name: " Kept ", Topics: []string{" one "}},
	})
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "Kept", Topics: []string{"one"}}}, catalog.Categories())

	_, err = NewCatalog([]Category{{Name: "Empty"}})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: Databases
    topics:
      - Postgres as a Queue
      - SQLite in Production
`), 0o644))

	catalog, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Size())
	assert.Equal(t, "Databases", catalog.Pick().Category)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	fallback, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default().Size(), fallback.Size())
}
