package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	objectKey, err := store.UploadFile(context.Background(), "receipt-1.png", []byte("image bytes"), "image/png", "receipts")
	require.NoError(t, err)
	assert.Equal(t, "receipts/receipt-1.png", objectKey)

	saved, err := os.ReadFile(filepath.Join(dir, "receipts", "receipt-1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), saved)

	link := store.GetPublicLinkKey(objectKey)
	assert.Equal(t, "/uploads/receipts/receipt-1.png", link)
	assert.Equal(t, objectKey, store.GetObjectKeyFromLink(link))

	require.NoError(t, store.DeleteFile(context.Background(), objectKey))
	_, err = os.Stat(filepath.Join(dir, "receipts", "receipt-1.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageDeleteMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.DeleteFile(context.Background(), "receipts/nope.png"))
}

func TestAllowedImageExt(t *testing.T) {
	assert.True(t, AllowedImageExt(".jpg"))
	assert.True(t, AllowedImageExt(".JPEG"))
	assert.True(t, AllowedImageExt(".png"))
	assert.False(t, AllowedImageExt(".gif"))
	assert.False(t, AllowedImageExt(".pdf"))
	assert.False(t, AllowedImageExt(""))
}
