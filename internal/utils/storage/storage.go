package storage

import (
	"context"
	"strings"
)

// AllowImage is the extension allow-list for uploaded receipt images.
var AllowImage = []string{".jpg", ".jpeg", ".png"}

type (
	// FileStorage persists uploaded image bytes under a generated name and
	// hands back an object key plus a public link whose final path segment
	// resolves the underlying object.
	FileStorage interface {
		UploadFile(ctx context.Context, fileName string, data []byte, contentType string, folder string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}
)

// AllowedImageExt reports whether ext (including the dot) is on the
// image allow-list.
func AllowedImageExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range AllowImage {
		if ext == allowed {
			return true
		}
	}
	return false
}
