package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type localStorage struct {
	baseDir string
}

// NewLocalStorage builds a filesystem-backed file store rooted at baseDir.
// Saved files are served statically under /uploads.
func NewLocalStorage(baseDir string) (FileStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

func (s *localStorage) UploadFile(_ context.Context, fileName string, data []byte, _ string, folder string) (string, error) {
	objectKey := fileName
	if folder != "" {
		objectKey = folder + "/" + fileName
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(objectKey))
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return objectKey, nil
}

func (s *localStorage) DeleteFile(_ context.Context, objectKey string) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(objectKey))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

func (s *localStorage) GetPublicLinkKey(objectKey string) string {
	return "/uploads/" + objectKey
}

func (s *localStorage) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "/uploads/")
}
