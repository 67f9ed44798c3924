package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument(t)
	doc.Path = dir + string(filepath.Separator)
	doc.Name = "talk"

	require.NoError(t, Save(doc))

	data, err := os.ReadFile(filepath.Join(dir, "talk.fsw"))
	require.NoError(t, err)
	assert.Equal(t, doc.Content()+"\n", string(data))

	loaded, err := Load(filepath.Join(dir, "talk.fsw"))
	require.NoError(t, err)
	assert.Equal(t, "talk", loaded.Name)
	assert.Equal(t, doc.Path, loaded.Path)
	assertSameDocument(t, doc, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.fsw"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.fsw")
	require.NoError(t, os.WriteFile(path, []byte("clip.mp4\n0~~words>>oops>>0.0\n"), 0o644))

	_, err := Load(path)
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestSaveRejectsEmptyName(t *testing.T) {
	doc := New("x")
	doc.Name = " "
	assert.Error(t, Save(doc))
	assert.Error(t, Save(nil))
}
