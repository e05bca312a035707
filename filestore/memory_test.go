package filestore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapterSaveLoadDelete(t *testing.T) {
	m := NewMemoryAdapter("")

	require.NoError(t, m.Save("files/u1/1_a.txt", []byte("hello")))

	data, err := m.Load("files/u1/1_a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	exists, err := m.Exists("files/u1/1_a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, m.Delete("files/u1/1_a.txt"))

	exists, err = m.Exists("files/u1/1_a.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = m.Load("files/u1/1_a.txt")
	assert.Error(t, err)
	assert.Error(t, m.Delete("files/u1/1_a.txt"))
}

func TestMemoryAdapterLoadReturnsCopy(t *testing.T) {
	m := NewMemoryAdapter("")
	require.NoError(t, m.Save("f", []byte("abc")))

	data, err := m.Load("f")
	require.NoError(t, err)
	data[0] = 'x'

	again, err := m.Load("f")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryAdapterSaveReader(t *testing.T) {
	m := NewMemoryAdapter("")
	require.NoError(t, m.SaveReader("f", strings.NewReader("streamed")))

	reader, err := m.LoadReader("f")
	require.NoError(t, err)
	defer reader.Close()

	buf := make([]byte, 8)
	n, _ := reader.Read(buf)
	assert.Equal(t, "streamed", string(buf[:n]))
}

func TestMemoryAdapterList(t *testing.T) {
	m := NewMemoryAdapter("")
	require.NoError(t, m.Save("files/u1/1_a.txt", []byte("a")))
	require.NoError(t, m.Save("files/u1/2_b.txt", []byte("b")))
	require.NoError(t, m.Save("files/u2/3_c.txt", []byte("c")))
	require.NoError(t, m.Save("other/x", []byte("x")))

	paths, err := m.List("files/")
	require.NoError(t, err)
	assert.Equal(t, []string{"files/u1/1_a.txt", "files/u1/2_b.txt", "files/u2/3_c.txt"}, paths)

	all, err := m.List("")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryAdapterLocator(t *testing.T) {
	m := NewMemoryAdapter("")
	require.NoError(t, m.Save("files/u1/1_a.txt", []byte("a")))

	locator, err := m.Locator("files/u1/1_a.txt")
	require.NoError(t, err)
	assert.Equal(t, "mock://files/u1/1_a.txt", locator)

	_, err = m.Locator("files/u1/missing")
	assert.Error(t, err)
}

func TestMemoryAdapterStatePersistsPathsOnly(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	m := NewMemoryAdapter(statePath)
	require.NoError(t, m.Save("files/u1/1_a.txt", []byte("contents")))

	// A fresh adapter remembers the path but not the bytes.
	reborn := NewMemoryAdapter(statePath)

	exists, err := reborn.Exists("files/u1/1_a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := reborn.Load("files/u1/1_a.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}
