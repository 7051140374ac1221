package fs

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	afs := afero.NewMemMapFs()

	require.NoError(t, WriteFileAtomic(afs, "/a/b/c/file.txt", []byte("data")))

	b, err := afero.ReadFile(afs, "/a/b/c/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, WriteFileAtomic(afs, "/dir/file.txt", []byte("x")))

	infos, err := afero.ReadDir(afs, "/dir")
	require.NoError(t, err)
	for _, info := range infos {
		assert.False(t, strings.HasPrefix(info.Name(), ".tmp-"), "temp file left behind: %s", info.Name())
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, WriteFileAtomic(afs, "/f", []byte("old")))
	require.NoError(t, WriteFileAtomic(afs, "/f", []byte("new")))

	b, err := afero.ReadFile(afs, "/f")
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
}

func TestAtomicWriteJSON(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, AtomicWriteJSON(afs, "/s.json", map[string]int{"n": 1}))

	b, err := afero.ReadFile(afs, "/s.json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "\n"), "JSON artifact should end with a newline")
	assert.Contains(t, string(b), `"n": 1`)
}

func TestAppendNDJSONLine(t *testing.T) {
	afs := afero.NewMemMapFs()
	require.NoError(t, AppendNDJSONLine(afs, "/log.ndjson", map[string]string{"a": "1"}))
	require.NoError(t, AppendNDJSONLine(afs, "/log.ndjson", map[string]string{"b": "2"}))

	b, err := afero.ReadFile(afs, "/log.ndjson")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestAcquireLockExclusive(t *testing.T) {
	afs := afero.NewMemMapFs()

	release, err := AcquireLock(afs, "/var/run.lock")
	require.NoError(t, err)

	_, err = AcquireLock(afs, "/var/run.lock")
	assert.Error(t, err, "second acquisition must fail while held")

	require.NoError(t, release())

	release2, err := AcquireLock(afs, "/var/run.lock")
	require.NoError(t, err)
	require.NoError(t, release2())
}
