package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/codeharvest"
	"github.com/fwojciec/codeharvest/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	store := fs.NewTargetStore(path)
	targets := []*codeharvest.Target{
		{URL: "https://example.com/b.html", File: "b/b.cpp"},
		{URL: "https://example.com/a.html", File: "a.cpp"},
	}

	require.NoError(t, store.SaveTargets(context.Background(), targets))

	got, err := store.LoadTargets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, targets, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed into place")
}

func TestTargetStore_WritesURLAndFileRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	store := fs.NewTargetStore(path)

	require.NoError(t, store.SaveTargets(context.Background(), []*codeharvest.Target{
		{URL: "https://example.com/pg.html", File: "out/example.cpp"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"url": "https://example.com/pg.html", "file": "out/example.cpp"}]`, string(data))
}

func TestTargetStore_SaveEmptyList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	store := fs.NewTargetStore(path)

	require.NoError(t, store.SaveTargets(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestTargetStore_SaveCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "data.json")
	store := fs.NewTargetStore(path)

	require.NoError(t, store.SaveTargets(context.Background(), nil))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestTargetStore_LoadReadsHandWrittenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"url": "https://example.com/a.html", "file": "a.cpp"},
  {"url": "https://example.com/a.html", "file": "again.cpp"}
]`), 0644))

	got, err := fs.NewTargetStore(path).LoadTargets(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "again.cpp", got[1].File)
}

func TestTargetStore_LoadMissingFile(t *testing.T) {
	t.Parallel()

	store := fs.NewTargetStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.LoadTargets(context.Background())

	assert.Equal(t, codeharvest.ENOTFOUND, codeharvest.ErrorCode(err))
}

func TestTargetStore_LoadInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := fs.NewTargetStore(path).LoadTargets(context.Background())

	assert.Equal(t, codeharvest.EPARSE, codeharvest.ErrorCode(err))
}

func TestTargetStore_LoadRejectsNullEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"url": "https://example.com/a.html", "file": "a.cpp"}, null]`), 0644))

	targets, err := fs.NewTargetStore(path).LoadTargets(context.Background())

	assert.Nil(t, targets)
	assert.Equal(t, codeharvest.EPARSE, codeharvest.ErrorCode(err))
	assert.Contains(t, codeharvest.ErrorMessage(err), "entry 1 is null")
}

func TestTargetStore_DefaultPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fs.DefaultTargetsFile, fs.NewTargetStore("").Path())
}
