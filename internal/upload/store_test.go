package upload_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/config"
	"github.com/SinaHo/investment-backend/internal/upload"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSaveImage_WritesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewLocalStore(config.UploadsConfig{Dir: dir, MaxBytes: 1 << 20})
	require.NoError(t, err)

	path, err := store.SaveImage(bytes.NewReader(pngHeader), "screenshot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/screenshot-"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, upload.PublicPrefix)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveImage_Rejects(t *testing.T) {
	store, err := upload.NewLocalStore(config.UploadsConfig{Dir: t.TempDir(), MaxBytes: 64})
	require.NoError(t, err)

	_, err = store.SaveImage(strings.NewReader("plain text, not a picture"), "photo")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
	assert.Equal(t, "Only image files are allowed", apperr.Message(err, ""))

	big := append(append([]byte{}, pngHeader...), make([]byte, 100)...)
	_, err = store.SaveImage(bytes.NewReader(big), "photo")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))

	_, err = store.SaveImage(bytes.NewReader(nil), "photo")
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "", upload.PublicURL(""))
	assert.Equal(t, "/uploads/a.png", upload.PublicURL("a.png"))
	assert.Equal(t, "/uploads/a.png", upload.PublicURL("/uploads/a.png"))
	assert.Equal(t, "https://cdn/x.png", upload.PublicURL("https://cdn/x.png"))
}
