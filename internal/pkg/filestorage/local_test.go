package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "/uploads/", 0, nil)
	require.NoError(t, err)

	asset, err := ls.Save(fileHeader(t, "chart.png", pngHeader), "sql/1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.URL, "/uploads/sql/1/"))
	assert.True(t, strings.HasSuffix(asset.URL, ".png"))
	assert.Equal(t, "chart.png", asset.Name)
	assert.Equal(t, "image/png", asset.Type)
	assert.Equal(t, int64(len(pngHeader)), asset.Size)

	full, err := ls.FullPath(asset.URL)
	require.NoError(t, err)
	_, err = os.Stat(full)
	require.NoError(t, err)

	require.NoError(t, ls.Delete(asset.URL))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// deleting again is not an error
	assert.NoError(t, ls.Delete(asset.URL))
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", 0, []string{"image/png"})
	require.NoError(t, err)

	_, err = ls.Save(fileHeader(t, "notes.txt", []byte("plain text")), "")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsLargeFile(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", 4, nil)
	require.NoError(t, err)

	_, err = ls.Save(fileHeader(t, "chart.png", pngHeader), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestPathTraversalIsRejected(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", 0, nil)
	require.NoError(t, err)

	_, err = ls.Save(fileHeader(t, "chart.png", pngHeader), "../escape")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = ls.FullPath("/uploads/../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = ls.FullPath("/uploads/")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
